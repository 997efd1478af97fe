package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/cache"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// --- テスト用モック ---

// mockAssembler はAssemblerのモック。呼び出し回数を記録する。
type mockAssembler struct {
	navigationFn func(ctx context.Context) (string, error)
	calls        map[string]int
}

func newMockAssembler() *mockAssembler {
	return &mockAssembler{calls: make(map[string]int)}
}

func (m *mockAssembler) Navigation(ctx context.Context) (string, error) {
	m.calls["navigation"]++
	if m.navigationFn != nil {
		return m.navigationFn(ctx)
	}
	return "# Navigation\n", nil
}

func (m *mockAssembler) FullContent(_ context.Context) (string, error) {
	m.calls["full_content"]++
	return "# Full Content\n", nil
}

func (m *mockAssembler) Sitemaps(_ context.Context) (string, error) {
	m.calls["sitemaps"]++
	return "https://forum.example.com/llms.txt", nil
}

func (m *mockAssembler) CategoryDocument(_ context.Context, category *model.Category) (string, error) {
	m.calls["category"]++
	return "# " + category.Name + "\n", nil
}

func (m *mockAssembler) TopicDocument(_ context.Context, topic *model.Topic) (string, error) {
	m.calls["topic"]++
	return "# " + topic.Title + "\n", nil
}

func (m *mockAssembler) TagDocument(_ context.Context, tag *model.Tag) (string, error) {
	m.calls["tag"]++
	return "# Tag: " + tag.Name + "\n", nil
}

// mockMetrics はMetricsのモック。ヒット・ミスをキー別に数える。
type mockMetrics struct {
	hits        map[string]int
	misses      map[string]int
	generations map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		hits:        make(map[string]int),
		misses:      make(map[string]int),
		generations: make(map[string]int),
	}
}

func (m *mockMetrics) RecordCacheHit(key string)  { m.hits[key]++ }
func (m *mockMetrics) RecordCacheMiss(key string) { m.misses[key]++ }
func (m *mockMetrics) RecordGeneration(doc string, _ time.Duration) {
	m.generations[doc]++
}

// mockTopicRepo はTopicRepositoryのモック。
type mockTopicRepo struct {
	findVisibleByIDFn func(ctx context.Context, id int64) (*model.Topic, error)
	maxCreatedAt      time.Time
}

func (m *mockTopicRepo) List(_ context.Context, _ repository.TopicFilter, _ repository.TopicOrder, _ int) ([]*model.Topic, error) {
	return nil, nil
}

func (m *mockTopicRepo) ListWithFirstPost(_ context.Context, _ repository.TopicFilter, _ repository.TopicOrder, _ int) ([]*model.TopicWithFirstPost, error) {
	return nil, nil
}

func (m *mockTopicRepo) FindVisibleByID(ctx context.Context, id int64) (*model.Topic, error) {
	if m.findVisibleByIDFn != nil {
		return m.findVisibleByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTopicRepo) Count(_ context.Context, _ repository.TopicFilter) (int, error) {
	return 0, nil
}

func (m *mockTopicRepo) SolvedSupported(_ context.Context) bool { return false }

func (m *mockTopicRepo) MaxCreatedAt(_ context.Context) (time.Time, error) {
	return m.maxCreatedAt, nil
}

// mockCategoryRepo はCategoryRepositoryのモック。
type mockCategoryRepo struct {
	findByIDFn   func(ctx context.Context, id int64) (*model.Category, error)
	maxUpdatedAt time.Time
}

func (m *mockCategoryRepo) List(_ context.Context, _ repository.CategoryFilter) ([]*model.Category, error) {
	return nil, nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCategoryRepo) MaxUpdatedAt(_ context.Context) (time.Time, error) {
	return m.maxUpdatedAt, nil
}

// mockTagRepo はTagRepositoryのモック。
type mockTagRepo struct {
	findByNameFn func(ctx context.Context, name string) (*model.Tag, error)
}

func (m *mockTagRepo) List(_ context.Context) ([]*model.Tag, error) { return nil, nil }

func (m *mockTagRepo) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, nil
}

// failStore は常に失敗するStore実装。ストア障害の縮退動作テスト用。
type failStore struct{}

func (failStore) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("store unavailable")
}

func (failStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return errors.New("store unavailable")
}

func (failStore) Delete(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

// testEnv は生成サービスと可変時計を束ねるテストハーネス。
type testEnv struct {
	svc       *Service
	assembler *mockAssembler
	metrics   *mockMetrics
	topics    *mockTopicRepo
	cats      *mockCategoryRepo
	tags      *mockTagRepo
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		assembler: newMockAssembler(),
		metrics:   newMockMetrics(),
		topics:    &mockTopicRepo{},
		cats:      &mockCategoryRepo{},
		tags:      &mockTagRepo{},
		now:       time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	store := cache.NewMemoryStoreWithClock(clock)
	env.svc = NewService(env.assembler, store, env.topics, env.cats, env.tags,
		env.metrics, time.Hour, clock)
	return env
}

// --- キャッシュ動作テスト ---

// TestService_Navigation_CachesResult は2回目の取得がキャッシュから返り
// 再組み立てが起きないことをテストする。
func TestService_Navigation_CachesResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Navigation(ctx)
	if err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}
	second, err := env.svc.Navigation(ctx)
	if err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}

	if first != second {
		t.Error("cached content differs from generated content")
	}
	if env.assembler.calls["navigation"] != 1 {
		t.Errorf("assembler calls = %d, want 1", env.assembler.calls["navigation"])
	}
	if env.metrics.misses[CacheKeyNavigation] != 1 {
		t.Errorf("cache misses = %d, want 1", env.metrics.misses[CacheKeyNavigation])
	}
	if env.metrics.hits[CacheKeyNavigation] != 1 {
		t.Errorf("cache hits = %d, want 1", env.metrics.hits[CacheKeyNavigation])
	}
}

// TestService_Navigation_RegeneratesAfterTTL はTTL経過後の取得で再組み立て
// が起きることをテストする。
func TestService_Navigation_RegeneratesAfterTTL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Navigation(ctx); err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}

	env.now = env.now.Add(2 * time.Hour)
	if _, err := env.svc.Navigation(ctx); err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}

	if env.assembler.calls["navigation"] != 2 {
		t.Errorf("assembler calls = %d, want 2", env.assembler.calls["navigation"])
	}
}

// TestService_FullContent_IsNeverCached は全文ドキュメントが毎回組み立て
// られることをテストする。
func TestService_FullContent_IsNeverCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.svc.FullContent(ctx); err != nil {
			t.Fatalf("FullContent returned error: %v", err)
		}
	}

	if env.assembler.calls["full_content"] != 3 {
		t.Errorf("assembler calls = %d, want 3", env.assembler.calls["full_content"])
	}
}

// TestService_Navigation_SurvivesStoreFailure はストア全断でもドキュメントが
// 生成・配信されることをテストする。
func TestService_Navigation_SurvivesStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	clock := func() time.Time { return env.now }
	svc := NewService(env.assembler, failStore{}, env.topics, env.cats, env.tags,
		env.metrics, time.Hour, clock)

	out, err := svc.Navigation(context.Background())
	if err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}
	if out != "# Navigation\n" {
		t.Errorf("content = %q, want generated navigation", out)
	}
}

// TestService_Navigation_WrapsBuildError は組み立て失敗がGENERATION_FAILED
// として返ることをテストする。
func TestService_Navigation_WrapsBuildError(t *testing.T) {
	env := newTestEnv(t)
	env.assembler.navigationFn = func(_ context.Context) (string, error) {
		return "", errors.New("connection refused")
	}

	_, err := env.svc.Navigation(context.Background())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeGenerationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeGenerationFailed)
	}
}

// --- エンティティ検索テスト ---

// TestService_CategoryDocument_NotFound は存在しない・閲覧制限カテゴリが
// CATEGORY_NOT_FOUNDになることをテストする。
func TestService_CategoryDocument_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 存在しないカテゴリ
	_, err := env.svc.CategoryDocument(ctx, 99)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Errorf("err = %v, want CATEGORY_NOT_FOUND", err)
	}

	// 閲覧制限カテゴリも未検出として扱う
	env.cats.findByIDFn = func(_ context.Context, _ int64) (*model.Category, error) {
		return &model.Category{ID: 99, Name: "Staff", ReadRestricted: true}, nil
	}
	_, err = env.svc.CategoryDocument(ctx, 99)
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Errorf("err = %v, want CATEGORY_NOT_FOUND for restricted category", err)
	}
	if env.assembler.calls["category"] != 0 {
		t.Error("assembler should not be called for a restricted category")
	}
}

// TestService_TopicDocument_NotFound は非公開トピックがTOPIC_NOT_FOUNDに
// なることをテストする。
func TestService_TopicDocument_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.TopicDocument(context.Background(), 42)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTopicNotFound {
		t.Errorf("err = %v, want TOPIC_NOT_FOUND", err)
	}
}

// TestService_TagDocument_FoundAndNotFound はタグの検索成否による分岐を
// テストする。
func TestService_TagDocument_FoundAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.TagDocument(ctx, "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTagNotFound {
		t.Errorf("err = %v, want TAG_NOT_FOUND", err)
	}

	env.tags.findByNameFn = func(_ context.Context, name string) (*model.Tag, error) {
		return &model.Tag{Name: name}, nil
	}
	out, err := env.svc.TagDocument(ctx, "golang")
	if err != nil {
		t.Fatalf("TagDocument returned error: %v", err)
	}
	if out != "# Tag: golang\n" {
		t.Errorf("content = %q, want tag document", out)
	}
}

// --- 鮮度判定テスト ---

// TestService_ShouldRefresh_TrueWithoutCheckpoint はチェックポイント未記録で
// trueになることをテストする。
func TestService_ShouldRefresh_TrueWithoutCheckpoint(t *testing.T) {
	env := newTestEnv(t)
	if !env.svc.ShouldRefresh(context.Background()) {
		t.Error("expected true without a checkpoint")
	}
}

// TestService_ShouldRefresh_FalseWhenFresh は新しいチェックポイントと
// コンテンツ無変化でfalseになることをテストする。
func TestService_ShouldRefresh_FalseWhenFresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.topics.maxCreatedAt = env.now.Add(-24 * time.Hour)
	env.cats.maxUpdatedAt = env.now.Add(-24 * time.Hour)
	env.svc.TouchCheckpoint(ctx)

	env.now = env.now.Add(30 * time.Minute)
	if env.svc.ShouldRefresh(ctx) {
		t.Error("expected false for a fresh checkpoint with no content changes")
	}
}

// TestService_ShouldRefresh_TrueAfterWindow は前回チェックから1時間超で
// trueになることをテストする。
func TestService_ShouldRefresh_TrueAfterWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.svc.TouchCheckpoint(ctx)
	env.now = env.now.Add(61 * time.Minute)
	if !env.svc.ShouldRefresh(ctx) {
		t.Error("expected true after the staleness window")
	}
}

// TestService_ShouldRefresh_TrueOnNewContent はチェックポイント以降の
// 新規トピック・カテゴリ更新でtrueになることをテストする。
func TestService_ShouldRefresh_TrueOnNewContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.svc.TouchCheckpoint(ctx)
	env.now = env.now.Add(10 * time.Minute)

	env.topics.maxCreatedAt = env.now.Add(-time.Minute)
	if !env.svc.ShouldRefresh(ctx) {
		t.Error("expected true when a topic was created after the checkpoint")
	}

	env.topics.maxCreatedAt = time.Time{}
	env.cats.maxUpdatedAt = env.now.Add(-time.Minute)
	if !env.svc.ShouldRefresh(ctx) {
		t.Error("expected true when a category was updated after the checkpoint")
	}
}

// TestService_ClearCache_ForcesRefresh はキャッシュ破棄後にドキュメントが
// 再生成され鮮度判定もtrueに戻ることをテストする。
func TestService_ClearCache_ForcesRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Navigation(ctx); err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}
	env.svc.TouchCheckpoint(ctx)

	env.svc.ClearCache(ctx)

	if !env.svc.ShouldRefresh(ctx) {
		t.Error("expected ShouldRefresh to be true after ClearCache")
	}
	if _, err := env.svc.Navigation(ctx); err != nil {
		t.Fatalf("Navigation returned error: %v", err)
	}
	if env.assembler.calls["navigation"] != 2 {
		t.Errorf("assembler calls = %d, want 2 after cache clear", env.assembler.calls["navigation"])
	}
}

// TestService_LastUpdateTime_RoundTrip はチェックポイント記録後に
// 最終更新時刻が読み戻せることをテストする。
func TestService_LastUpdateTime_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	recorded := env.now
	env.svc.TouchCheckpoint(ctx)

	env.now = env.now.Add(3 * time.Hour)
	got := env.svc.LastUpdateTime(ctx)
	if !got.Equal(recorded) {
		t.Errorf("LastUpdateTime = %v, want %v", got, recorded)
	}
}

// TestService_LastUpdateTime_FallsBackToNow は未記録時に現在時刻が返る
// ことをテストする。
func TestService_LastUpdateTime_FallsBackToNow(t *testing.T) {
	env := newTestEnv(t)
	got := env.svc.LastUpdateTime(context.Background())
	if !got.Equal(env.now) {
		t.Errorf("LastUpdateTime = %v, want %v", got, env.now)
	}
}

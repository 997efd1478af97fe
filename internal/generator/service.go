// Package generator はドキュメント生成のオーケストレーションと
// キャッシュ・鮮度管理を提供する。
package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/cache"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// キャッシュキー。グローバルドキュメント2件とチェックポイント2件のみを持つ。
const (
	CacheKeyNavigation = "llms_txt_navigation"
	CacheKeySitemaps   = "llms_txt_sitemaps"
	CacheKeyLastCheck  = "llms_txt_last_content_check"
	CacheKeyLastUpdate = "llms_txt_last_update_timestamp"
)

// チェックポイントのTTLと鮮度判定ウィンドウ。
const (
	lastCheckTTL    = 2 * time.Hour
	lastUpdateTTL   = 30 * 24 * time.Hour
	staleCheckAfter = time.Hour
)

// Assembler はドキュメント組み立てのインターフェース。
// テスタビリティのためdocument.Assemblerを抽象化する。
type Assembler interface {
	Navigation(ctx context.Context) (string, error)
	FullContent(ctx context.Context) (string, error)
	Sitemaps(ctx context.Context) (string, error)
	CategoryDocument(ctx context.Context, category *model.Category) (string, error)
	TopicDocument(ctx context.Context, topic *model.Topic) (string, error)
	TagDocument(ctx context.Context, tag *model.Tag) (string, error)
}

// Metrics は生成メトリクス記録のインターフェース。
type Metrics interface {
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
	RecordGeneration(doc string, duration time.Duration)
}

// Service はキャッシュ管理を含む生成サービス。
// ナビゲーションとサイトマップのみをTTL付きでキャッシュし、
// 全文・エンティティ別ドキュメントは常にオンデマンド生成する。
type Service struct {
	assembler  Assembler
	store      cache.Store
	topics     repository.TopicRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	metrics    Metrics
	ttl        time.Duration
	now        func() time.Time

	// 同一キーの同時キャッシュミスをまとめる。生成は純関数なので
	// 競合しても結果は同一であり正しさに影響しないが、
	// リポジトリへの重複負荷を避けるためキーごとに単一化する。
	sf singleflight.Group
}

// NewService はServiceを生成する。nowには本番ではtime.Nowを渡す。
func NewService(
	assembler Assembler,
	store cache.Store,
	topics repository.TopicRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	metrics Metrics,
	ttl time.Duration,
	now func() time.Time,
) *Service {
	return &Service{
		assembler:  assembler,
		store:      store,
		topics:     topics,
		categories: categories,
		tags:       tags,
		metrics:    metrics,
		ttl:        ttl,
		now:        now,
	}
}

// Navigation はナビゲーションドキュメントをキャッシュ経由で返す。
func (s *Service) Navigation(ctx context.Context) (string, error) {
	return s.cached(ctx, CacheKeyNavigation, "navigation", s.assembler.Navigation)
}

// Sitemaps はサイトマップドキュメントをキャッシュ経由で返す。
func (s *Service) Sitemaps(ctx context.Context) (string, error) {
	return s.cached(ctx, CacheKeySitemaps, "sitemaps", s.assembler.Sitemaps)
}

// FullContent は全文ドキュメントを返す。サイズが大きく設定依存のため
// キャッシュせず、リクエストごとに組み立てる。
func (s *Service) FullContent(ctx context.Context) (string, error) {
	return s.generate(ctx, "full_content", s.assembler.FullContent)
}

// CategoryDocument は指定カテゴリのドキュメントを返す。
// カテゴリが存在しない、または閲覧制限されている場合はErrCodeCategoryNotFound。
func (s *Service) CategoryDocument(ctx context.Context, categoryID int64) (string, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if category == nil || category.ReadRestricted {
		return "", model.NewCategoryNotFoundError(categoryID)
	}

	return s.generate(ctx, "category", func(ctx context.Context) (string, error) {
		return s.assembler.CategoryDocument(ctx, category)
	})
}

// TopicDocument は指定トピックのドキュメントを返す。
// 非公開・制限カテゴリ所属・regular以外はErrCodeTopicNotFound。
func (s *Service) TopicDocument(ctx context.Context, topicID int64) (string, error) {
	topic, err := s.topics.FindVisibleByID(ctx, topicID)
	if err != nil {
		return "", err
	}
	if topic == nil {
		return "", model.NewTopicNotFoundError(topicID)
	}

	return s.generate(ctx, "topic", func(ctx context.Context) (string, error) {
		return s.assembler.TopicDocument(ctx, topic)
	})
}

// TagDocument は指定タグのドキュメントを返す。
func (s *Service) TagDocument(ctx context.Context, name string) (string, error) {
	tag, err := s.tags.FindByName(ctx, name)
	if err != nil {
		return "", err
	}
	if tag == nil {
		return "", model.NewTagNotFoundError(name)
	}

	return s.generate(ctx, "tag", func(ctx context.Context) (string, error) {
		return s.assembler.TagDocument(ctx, tag)
	})
}

// ClearCache はグローバルドキュメントと鮮度チェックポイントを破棄する。
// 呼び出し側から見て一括の無効化として振る舞い、次回アクセスで再生成される。
func (s *Service) ClearCache(ctx context.Context) {
	for _, key := range []string{CacheKeyNavigation, CacheKeySitemaps, CacheKeyLastCheck} {
		if err := s.store.Delete(ctx, key); err != nil {
			slog.Warn("cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// ShouldRefresh はキャッシュ再生成に値する更新があるかを判定する。
// チェックポイント未記録、前回チェックから1時間超、あるいは
// 最新トピック作成・カテゴリ更新がチェックポイントより新しい場合にtrue。
// TTLによるキャッシュエントリ失効とは独立した判定で、
// 再生成を仕掛ける価値があるかどうかの事前評価に使う。
func (s *Service) ShouldRefresh(ctx context.Context) bool {
	lastCheck, ok := s.readTimestamp(ctx, CacheKeyLastCheck)
	if !ok {
		return true
	}
	if s.now().Sub(lastCheck) > staleCheckAfter {
		return true
	}

	lastTopic, err := s.topics.MaxCreatedAt(ctx)
	if err == nil && !lastTopic.IsZero() && lastTopic.After(lastCheck) {
		return true
	}

	lastCategory, err := s.categories.MaxUpdatedAt(ctx)
	if err == nil && !lastCategory.IsZero() && lastCategory.After(lastCheck) {
		return true
	}

	return false
}

// TouchCheckpoint は鮮度チェックポイントを現在時刻で更新する。
// last-checkは短いTTL、コンテンツ最終更新時刻は長いTTLで保持する。
func (s *Service) TouchCheckpoint(ctx context.Context) {
	now := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.store.Set(ctx, CacheKeyLastCheck, []byte(now), lastCheckTTL); err != nil {
		slog.Warn("checkpoint write failed", slog.String("key", CacheKeyLastCheck), slog.String("error", err.Error()))
	}
	if err := s.store.Set(ctx, CacheKeyLastUpdate, []byte(now), lastUpdateTTL); err != nil {
		slog.Warn("checkpoint write failed", slog.String("key", CacheKeyLastUpdate), slog.String("error", err.Error()))
	}
}

// LastUpdateTime はコンテンツの最終更新時刻を返す。
// 未記録の場合は現在時刻を返す（表示用の参考値であり鮮度判定には使わない）。
func (s *Service) LastUpdateTime(ctx context.Context) time.Time {
	if t, ok := s.readTimestamp(ctx, CacheKeyLastUpdate); ok {
		return t
	}
	return s.now()
}

// cached はget-or-generate。ストア障害はキャッシュミスとして扱い、
// 生成自体は失敗させない。
func (s *Service) cached(ctx context.Context, key, doc string, build func(context.Context) (string, error)) (string, error) {
	value, err := s.store.Get(ctx, key)
	if err == nil {
		s.metrics.RecordCacheHit(key)
		return string(value), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("cache read failed, regenerating", slog.String("key", key), slog.String("error", err.Error()))
	}
	s.metrics.RecordCacheMiss(key)

	result, err, _ := s.sf.Do(key, func() (any, error) {
		content, err := s.generate(ctx, doc, build)
		if err != nil {
			return nil, err
		}
		if err := s.store.Set(ctx, key, []byte(content), s.ttl); err != nil {
			slog.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return content, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// generate は組み立てを実行し、所要時間を記録する。
// リポジトリ障害はリトライせずそのまま伝播する。
func (s *Service) generate(ctx context.Context, doc string, build func(context.Context) (string, error)) (string, error) {
	start := time.Now()
	content, err := build(ctx)
	if err != nil {
		return "", model.NewGenerationFailedError(doc, err)
	}
	s.metrics.RecordGeneration(doc, time.Since(start))

	return content, nil
}

func (s *Service) readTimestamp(ctx context.Context, key string) (time.Time, bool) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Package ranking はドキュメントに載せるコンテンツの選別とランキングを提供する。
// 全操作が可視性フィルタ（visibleかつregularアーキタイプ、閲覧制限カテゴリ除外）
// を通した結果のみを返し、該当なしは空スライス（エラーではない）とする。
package ranking

import (
	"context"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// Service はコンテンツ選別サービス。
// しきい値・件数上限はすべて呼び出し側が明示的に渡し、隠れたデフォルトを持たない。
type Service struct {
	topics     repository.TopicRepository
	posts      repository.PostRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewService はServiceを生成する。nowには本番ではtime.Nowを渡す。
func NewService(
	topics repository.TopicRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	now func() time.Time,
) *Service {
	return &Service{
		topics:     topics,
		posts:      posts,
		users:      users,
		categories: categories,
		now:        now,
	}
}

// publicFilter は公開ドキュメント共通の可視性フィルタを返す。
func publicFilter() repository.TopicFilter {
	return repository.TopicFilter{
		VisibleOnly:       true,
		Archetype:         model.ArchetypeRegular,
		ExcludeRestricted: true,
	}
}

// Popular はlike数がminLikesを超える、または閲覧数がminViewsを超える
// トピックをlike数降順→閲覧数降順で返す。
func (s *Service) Popular(ctx context.Context, minLikes, minViews, limit int) ([]*model.Topic, error) {
	filter := publicFilter()
	filter.LikesOver = minLikes
	filter.ViewsOver = minViews
	return s.topics.List(ctx, filter, repository.OrderByLikesThenViews, limit)
}

// PopularDetailed はPopularと同じ選択に先頭投稿の原文を付与して返す。
// 抜粋付きの詳細セクション用で、呼び出し側は緩いしきい値を渡す。
func (s *Service) PopularDetailed(ctx context.Context, minLikes, minViews, limit int) ([]*model.TopicWithFirstPost, error) {
	filter := publicFilter()
	filter.LikesOver = minLikes
	filter.ViewsOver = minViews
	return s.topics.ListWithFirstPost(ctx, filter, repository.OrderByLikesThenViews, limit)
}

// FAQCandidates はタイトルに疑問符を含み、返信が1件以上ある
// トピックをlike数降順→閲覧数降順で返す。
func (s *Service) FAQCandidates(ctx context.Context, limit int) ([]*model.Topic, error) {
	filter := publicFilter()
	filter.TitleContains = "?"
	filter.MinPostsCount = 1
	return s.topics.List(ctx, filter, repository.OrderByLikesThenViews, limit)
}

// Trending は指定日数以内に作成されたトピックを閲覧数降順→like数降順で返す。
func (s *Service) Trending(ctx context.Context, windowDays, limit int) ([]*model.Topic, error) {
	filter := publicFilter()
	filter.CreatedAfter = s.now().AddDate(0, 0, -windowDays)
	return s.topics.List(ctx, filter, repository.OrderByViewsThenLikes, limit)
}

// Solved は解決済みマーカー付きトピックを閲覧数降順で返す。
// マーカー機構が利用できないフォーラムでは失敗せず、
// 「利用不可」を示すSolvedStatusを返す。
func (s *Service) Solved(ctx context.Context, limit int) (model.SolvedStatus, error) {
	if !s.topics.SolvedSupported(ctx) {
		return model.SolvedUnavailable(), nil
	}

	filter := publicFilter()
	filter.SolvedOnly = true
	topics, err := s.topics.List(ctx, filter, repository.OrderByViewsThenLikes, limit)
	if err != nil {
		return model.SolvedStatus{}, err
	}

	return model.SolvedAvailable(topics), nil
}

// TopContributors は投稿数がminPostsを超えるアクティブな実ユーザーを
// 被like数降順で返す。
func (s *Service) TopContributors(ctx context.Context, minPosts, limit int) ([]*model.User, error) {
	return s.users.ListContributors(ctx, minPosts, limit)
}

// Latest は作成日時降順のトピック一覧を返す。
func (s *Service) Latest(ctx context.Context, limit int) ([]*model.Topic, error) {
	return s.topics.List(ctx, publicFilter(), repository.OrderByCreatedDesc, limit)
}

// RecentByCategory は指定カテゴリ直下のトピックを作成日時降順で返す。
func (s *Service) RecentByCategory(ctx context.Context, categoryID int64, limit int) ([]*model.Topic, error) {
	filter := repository.TopicFilter{
		VisibleOnly: true,
		Archetype:   model.ArchetypeRegular,
		CategoryID:  &categoryID,
	}
	return s.topics.List(ctx, filter, repository.OrderByCreatedDesc, limit)
}

// PopularByCategory は指定カテゴリ直下のトピックをlike数降順→閲覧数降順で返す。
func (s *Service) PopularByCategory(ctx context.Context, categoryID int64, limit int) ([]*model.Topic, error) {
	filter := repository.TopicFilter{
		VisibleOnly: true,
		Archetype:   model.ArchetypeRegular,
		CategoryID:  &categoryID,
	}
	return s.topics.List(ctx, filter, repository.OrderByLikesThenViews, limit)
}

// TaggedTopics は指定タグの付いたトピックをlike数降順→閲覧数降順で返す。
func (s *Service) TaggedTopics(ctx context.Context, tagName string, limit int) ([]*model.Topic, error) {
	filter := publicFilter()
	filter.TagName = tagName
	return s.topics.List(ctx, filter, repository.OrderByLikesThenViews, limit)
}

// AllTopics はllms-full.txtの全トピック一覧用の選択を返す。
// minViews以上の閲覧数を持つものを作成日時降順で、limit<=0は無制限。
func (s *Service) AllTopics(ctx context.Context, minViews, limit int) ([]*model.TopicWithFirstPost, error) {
	filter := publicFilter()
	filter.MinViews = minViews
	return s.topics.ListWithFirstPost(ctx, filter, repository.OrderByCreatedDesc, limit)
}

// QuickFacts はフォーラム全体の統計値を集計して返す。
// 解決済み数は機構が利用できない場合0になる（エラーにしない）。
func (s *Service) QuickFacts(ctx context.Context) (*model.QuickFacts, error) {
	topicCount, err := s.topics.Count(ctx, repository.TopicFilter{
		VisibleOnly: true,
		Archetype:   model.ArchetypeRegular,
	})
	if err != nil {
		return nil, err
	}

	postCount, err := s.posts.CountVisible(ctx)
	if err != nil {
		return nil, err
	}

	userCount, err := s.users.CountReal(ctx)
	if err != nil {
		return nil, err
	}

	solvedCount := 0
	if s.topics.SolvedSupported(ctx) {
		solvedCount, err = s.topics.Count(ctx, repository.TopicFilter{SolvedOnly: true})
		if err != nil {
			return nil, err
		}
	}

	return &model.QuickFacts{
		TotalTopics: topicCount,
		TotalPosts:  postCount,
		TotalUsers:  userCount,
		TotalSolved: solvedCount,
	}, nil
}

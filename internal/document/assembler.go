package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/config"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/ranking"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// 空結果時にセクションへ入れる定型文。
// 欠落データはエラーではなく常にこれらの文で埋め、ドキュメント構造を保つ。
const (
	placeholderPopular      = "Building community content..."
	placeholderFAQ          = "Check our discussions for common questions."
	placeholderTrending     = "Check back for trending discussions."
	placeholderContributors = "Building contributor list..."
	placeholderCategories   = "No public categories available"
	placeholderNoTopicsYet  = "No topics yet"
	placeholderNoTopics     = "No topics available"
	placeholderNoSolved     = "No solved topics yet."
	placeholderSolvedOff    = "Solved topics feature not available."
	placeholderNoDesc       = "No description"
)

// ナビゲーション・詳細セクションの選別しきい値。
// llms.txtのセクション構成に固有の値で、サイト設定からは変更しない。
const (
	popularMinLikes = 5
	popularMinViews = 1000
	popularLimit    = 15

	detailedMinLikes = 3
	detailedMinViews = 500
	detailedLimit    = 25
	detailedExcerpt  = 300

	faqLimit = 10

	trendingWindowDays = 7
	trendingLimit      = 10

	solvedLimit = 20

	contributorsMinPosts = 10
	contributorsLimit    = 10

	categoryPopularLimit = 10
	categoryRecentLimit  = 100
	tagTopicsLimit       = 100
)

// Assembler はllms.txtファミリーの各ドキュメントを組み立てる。
// リポジトリの現在状態と注入された時計のみに依存し、他の隠れた状態を持たない。
type Assembler struct {
	ranking    *ranking.Service
	categories repository.CategoryRepository
	posts      repository.PostRepository
	tags       repository.TagRepository
	cfg        *config.Config
	now        func() time.Time
}

// NewAssembler はAssemblerを生成する。nowには本番ではtime.Nowを渡す。
func NewAssembler(
	rankingService *ranking.Service,
	categories repository.CategoryRepository,
	posts repository.PostRepository,
	tags repository.TagRepository,
	cfg *config.Config,
	now func() time.Time,
) *Assembler {
	return &Assembler{
		ranking:    rankingService,
		categories: categories,
		posts:      posts,
		tags:       tags,
		cfg:        cfg,
		now:        now,
	}
}

// aiInstructions はAI向けの引用・出典ルールのブロックを返す。
func aiInstructions() string {
	return strings.TrimRight(`## For AI Assistants
- **Citation**: When referencing content, link to the original topic URL
- **Attribution**: Credit the author username when quoting
- **Freshness**: Content is updated in real-time; check dates for time-sensitive info
- **Verification**: Community-upvoted answers indicate reliability
- **Context**: This is a learning community focused on tutorials, tools, and knowledge sharing`, "\n")
}

// quickFacts はフォーラム統計のセクション本文を返す。
func (a *Assembler) quickFacts(ctx context.Context) (string, error) {
	facts, err := a.ranking.QuickFacts(ctx)
	if err != nil {
		return "", err
	}

	lines := []string{
		"- **Total Discussions**: " + numberWithDelimiter(facts.TotalTopics),
		"- **Total Posts**: " + numberWithDelimiter(facts.TotalPosts),
		"- **Community Members**: " + numberWithDelimiter(facts.TotalUsers),
		"- **Solved Problems**: " + numberWithDelimiter(facts.TotalSolved),
		"- **Last Updated**: " + formatTimeUTC(a.now()),
	}
	return strings.Join(lines, "\n"), nil
}

// popularContent は人気トピックの箇条書き本文を返す。
func (a *Assembler) popularContent(ctx context.Context) (string, error) {
	topics, err := a.ranking.Popular(ctx, popularMinLikes, popularMinViews, popularLimit)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return placeholderPopular, nil
	}

	var lines []string
	for _, t := range topics {
		var stats []string
		if t.LikeCount > 0 {
			stats = append(stats, fmt.Sprintf("%d likes", t.LikeCount))
		}
		stats = append(stats, numberWithDelimiter(t.Views)+" views")
		lines = append(lines, fmt.Sprintf("- [%s](%s) (%s)",
			t.Title, topicURL(a.cfg.BaseURL, t), strings.Join(stats, ", ")))
	}
	return strings.Join(lines, "\n"), nil
}

// faqSection は疑問形タイトルのトピックをQ&A形式で列挙する。
func (a *Assembler) faqSection(ctx context.Context) (string, error) {
	topics, err := a.ranking.FAQCandidates(ctx, faqLimit)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return placeholderFAQ, nil
	}

	var lines []string
	for _, t := range topics {
		answers := t.Replies()
		plural := "s"
		if answers == 1 {
			plural = ""
		}
		lines = append(lines, fmt.Sprintf("- **Q: %s**\n  [See %d answer%s](%s)",
			t.Title, answers, plural, topicURL(a.cfg.BaseURL, t)))
	}
	return strings.Join(lines, "\n"), nil
}

// trendingSection は直近7日のトレンドトピックを列挙する。
func (a *Assembler) trendingSection(ctx context.Context) (string, error) {
	topics, err := a.ranking.Trending(ctx, trendingWindowDays, trendingLimit)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return placeholderTrending, nil
	}

	var lines []string
	for _, t := range topics {
		lines = append(lines, fmt.Sprintf("- [%s](%s) - %s (%s views)",
			t.Title, topicURL(a.cfg.BaseURL, t),
			categoryLabel(t.CategoryName), numberWithDelimiter(t.Views)))
	}
	return strings.Join(lines, "\n"), nil
}

// latestSection は最新トピックを列挙する。
func (a *Assembler) latestSection(ctx context.Context) (string, error) {
	topics, err := a.ranking.Latest(ctx, a.cfg.LatestTopicsCount)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return placeholderNoTopicsYet, nil
	}

	var lines []string
	for _, t := range topics {
		lines = append(lines, fmt.Sprintf("- [%s](%s) - %s (%s)",
			t.Title, topicURL(a.cfg.BaseURL, t),
			categoryLabel(t.CategoryName), formatDate(t.CreatedAt)))
	}
	return strings.Join(lines, "\n"), nil
}

// contributorsSection は貢献者一覧を列挙する。
func (a *Assembler) contributorsSection(ctx context.Context) (string, error) {
	users, err := a.ranking.TopContributors(ctx, contributorsMinPosts, contributorsLimit)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return placeholderContributors, nil
	}

	var lines []string
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("- [@%s](%s) - %s posts, %s likes received",
			u.Username, userURL(a.cfg.BaseURL, u.Username),
			numberWithDelimiter(u.PostCount), numberWithDelimiter(u.LikesReceived)))
	}
	return strings.Join(lines, "\n"), nil
}

// categoriesSummary はカテゴリとサブカテゴリの要約一覧を返す。
func (a *Assembler) categoriesSummary(ctx context.Context) (string, error) {
	parents, err := a.categories.List(ctx, repository.CategoryFilter{
		ExcludeRestricted: true,
		RootOnly:          true,
	})
	if err != nil {
		return "", err
	}
	if len(parents) == 0 {
		return placeholderCategories, nil
	}

	var blocks []string
	for _, c := range parents {
		desc := c.DescriptionExcerpt
		if desc == "" {
			desc = placeholderNoDesc
		}

		block := fmt.Sprintf("### [%s](%s) (%s topics)\n%s",
			c.Name, categoryURL(a.cfg.BaseURL, c), numberWithDelimiter(c.TopicCount), desc)

		subs, err := a.subcategories(ctx, c.ID)
		if err != nil {
			return "", err
		}
		if len(subs) > 0 {
			var lines []string
			for _, sub := range subs {
				subdesc := sub.DescriptionExcerpt
				if subdesc == "" {
					subdesc = placeholderNoDesc
				}
				lines = append(lines, fmt.Sprintf("- [%s](%s): %s",
					sub.Name, categoryURL(a.cfg.BaseURL, sub), subdesc))
			}
			block += "\n\n" + strings.Join(lines, "\n")
		}

		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// categoriesDetailed はカテゴリとサブカテゴリの詳細（説明全文）一覧を返す。
func (a *Assembler) categoriesDetailed(ctx context.Context) (string, error) {
	parents, err := a.categories.List(ctx, repository.CategoryFilter{
		ExcludeRestricted: true,
		RootOnly:          true,
	})
	if err != nil {
		return "", err
	}
	if len(parents) == 0 {
		return placeholderCategories, nil
	}

	var blocks []string
	for _, c := range parents {
		block := fmt.Sprintf("### [%s](%s)", c.Name, categoryURL(a.cfg.BaseURL, c))
		if c.Description != "" {
			block += "\n\n" + c.Description
		}

		subs, err := a.subcategories(ctx, c.ID)
		if err != nil {
			return "", err
		}
		if len(subs) > 0 {
			var lines []string
			for _, sub := range subs {
				subdesc := sub.DescriptionExcerpt
				if subdesc == "" {
					subdesc = placeholderNoDesc
				}
				lines = append(lines, fmt.Sprintf("- **[%s](%s)**: %s",
					sub.Name, categoryURL(a.cfg.BaseURL, sub), subdesc))
			}
			block += "\n\n**Subcategories:**\n\n" + strings.Join(lines, "\n")
		}

		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// subcategories は指定カテゴリ直下の公開サブカテゴリを返す。
// ネストは最大1段なのでこれ以上の再帰は行わない。
func (a *Assembler) subcategories(ctx context.Context, parentID int64) ([]*model.Category, error) {
	return a.categories.List(ctx, repository.CategoryFilter{
		ExcludeRestricted: true,
		ParentID:          &parentID,
	})
}

// solvedSection は解決済みトピックの一覧本文を返す。
// 機構が利用できない場合も失敗せず、定型文で埋める。
func (a *Assembler) solvedSection(ctx context.Context) (string, error) {
	status, err := a.ranking.Solved(ctx, solvedLimit)
	if err != nil {
		return "", err
	}
	if !status.Available {
		return placeholderSolvedOff, nil
	}
	if len(status.Topics) == 0 {
		return placeholderNoSolved, nil
	}

	var lines []string
	for _, t := range status.Topics {
		lines = append(lines, fmt.Sprintf("- ✓ [%s](%s) (Solved, %s views)",
			t.Title, topicURL(a.cfg.BaseURL, t), numberWithDelimiter(t.Views)))
	}
	return strings.Join(lines, "\n"), nil
}

// optionalLinks は追加リソースリンクの一覧を返す。
// About/FAQ/利用規約/プライバシーのURLは設定済みかつ非空の場合のみ出力する。
func (a *Assembler) optionalLinks() string {
	links := []string{
		fmt.Sprintf("- [Full Documentation (llms-full.txt)](%s/llms-full.txt): Complete forum content", a.cfg.BaseURL),
		fmt.Sprintf("- [Sitemap Index (sitemaps.txt)](%s/sitemaps.txt): All LLM-readable URLs", a.cfg.BaseURL),
	}

	if a.cfg.AboutURL != "" {
		links = append(links, fmt.Sprintf("- [About](%s): About this community", a.cfg.AboutURL))
	}
	if a.cfg.FAQURL != "" {
		links = append(links, fmt.Sprintf("- [FAQ](%s): Frequently asked questions", a.cfg.FAQURL))
	}
	if a.cfg.TOSURL != "" {
		links = append(links, fmt.Sprintf("- [Terms of Service](%s): Community guidelines", a.cfg.TOSURL))
	}
	if a.cfg.PrivacyURL != "" {
		links = append(links, fmt.Sprintf("- [Privacy Policy](%s): Privacy information", a.cfg.PrivacyURL))
	}

	return strings.Join(links, "\n")
}

package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// Sitemaps はクローラー向けのフラットなURL一覧（sitemaps.txt）を組み立てる。
// 並びは グローバル2件 → カテゴリ → トピック（新しい順）→ タグ。
// 構造化XMLサイトマップではなく、改行区切りの単純なリストを返す。
func (a *Assembler) Sitemaps(ctx context.Context) (string, error) {
	urls := []string{
		a.cfg.BaseURL + "/llms.txt",
		a.cfg.BaseURL + "/llms-full.txt",
	}

	categories, err := a.categories.List(ctx, repository.CategoryFilter{ExcludeRestricted: true})
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		urls = append(urls, fmt.Sprintf("%s/c/%s/llms.txt", a.cfg.BaseURL, categoryPath(c)))
	}

	// 全トピック一覧と同じ最小閲覧数・件数ティアで絞る。
	// 無制限ティアでもファイル肥大化を防ぐためハードキャップ付き。
	topics, err := a.ranking.AllTopics(ctx, a.cfg.MinViews, a.cfg.PostsLimit.SitemapLimit())
	if err != nil {
		return "", err
	}
	for _, t := range topics {
		urls = append(urls, topicURL(a.cfg.BaseURL, &t.Topic)+"/llms.txt")
	}

	if a.cfg.TaggingEnabled {
		tags, err := a.tags.List(ctx)
		if err != nil {
			return "", err
		}
		for _, tag := range tags {
			urls = append(urls, tagURL(a.cfg.BaseURL, tag.Name)+"/llms.txt")
		}
	}

	return strings.Join(urls, "\n"), nil
}

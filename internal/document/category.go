package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// CategoryDocument は単一カテゴリのドキュメントを組み立てる。
// サブカテゴリ一覧・人気トピック10件・最近のトピック100件を含み、
// フッターには正規URLを引用一貫性のため2回（Canonical / Original content）記す。
func (a *Assembler) CategoryDocument(ctx context.Context, category *model.Category) (string, error) {
	doc := &Document{}
	catURL := categoryURL(a.cfg.BaseURL, category)

	header := fmt.Sprintf("# %s\n> Category: %s", category.Name, a.cfg.SiteTitle)
	if category.Description != "" {
		header += "\n\n" + category.Description
	}
	header += fmt.Sprintf("\n\n**Category URL:** %s\n**Topics in this category:** %s",
		catURL, numberWithDelimiter(category.TopicCount))
	doc.Add(SectionHeader, header)

	subs, err := a.subcategories(ctx, category.ID)
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
		doc.Add("subcategories", "## Subcategories\n\n"+strings.Join(lines, "\n"))
	}

	popular, err := a.ranking.PopularByCategory(ctx, category.ID, categoryPopularLimit)
	if err != nil {
		return "", err
	}
	if len(popular) > 0 {
		var lines []string
		for _, t := range popular {
			lines = append(lines, fmt.Sprintf("- [%s](%s) (%s views, %d likes)",
				t.Title, topicURL(a.cfg.BaseURL, t), numberWithDelimiter(t.Views), t.LikeCount))
		}
		doc.Add("popular_topics", "## Most Popular Topics\n\n"+strings.Join(lines, "\n"))
	}

	recent, err := a.ranking.RecentByCategory(ctx, category.ID, categoryRecentLimit)
	if err != nil {
		return "", err
	}
	if len(recent) > 0 {
		var lines []string
		for _, t := range recent {
			lines = append(lines, fmt.Sprintf("- [%s](%s) (%d views, %d replies)",
				t.Title, topicURL(a.cfg.BaseURL, t), t.Views, t.Replies()))
		}
		doc.Add("recent_topics", "## Recent Topics\n\n"+strings.Join(lines, "\n"))
	}

	doc.Add("canonical", canonicalFooter(catURL))

	return doc.Render(), nil
}

// canonicalFooter は正規URLのフッターブロックを返す。
// CanonicalとOriginal contentは同一URLを指す。フォーマットファミリー全体の
// 引用一貫性のため両方を記載する。
func canonicalFooter(url string) string {
	return fmt.Sprintf("**Canonical:** %s\n**Original content:** %s", url, url)
}

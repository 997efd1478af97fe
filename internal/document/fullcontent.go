package document

import (
	"context"
	"fmt"
	"strings"
)

// llms-full.txt固有のセクション名。
const (
	SectionAbout     = "about"
	SectionBackLink  = "back_link"
	SectionSolved    = "solved"
	SectionAllTopics = "all_topics"
)

// FullContent は全文ドキュメント（llms-full.txt）を組み立てる。
// サイズが大きく設定依存のためキャッシュせず、リクエストごとに生成される。
func (a *Assembler) FullContent(ctx context.Context) (string, error) {
	doc, err := a.buildFullContent(ctx)
	if err != nil {
		return "", err
	}
	return doc.Render(), nil
}

func (a *Assembler) buildFullContent(ctx context.Context) (*Document, error) {
	doc := &Document{}

	doc.Add(SectionHeader, fmt.Sprintf("# %s - Full Content\n\n> %s",
		a.cfg.SiteTitle, a.cfg.SiteDescription))

	// Aboutブロックは全文説明が設定されている場合のみ出力する。
	if a.cfg.FullDescription != "" {
		doc.Add(SectionAbout, "## About This Forum\n\n"+a.cfg.FullDescription)
	}

	doc.Add(SectionAI, aiInstructions())
	doc.Add(SectionBackLink, fmt.Sprintf("[← Back to Navigation (llms.txt)](%s/llms.txt)\n\n---",
		a.cfg.BaseURL))

	facts, err := a.quickFacts(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionQuickFacts, "## Quick Stats\n"+facts+"\n\n---")

	detailed, err := a.popularDetailed(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionPopular, "## Most Valuable Content (Highly Rated)\n"+detailed+"\n\n---")

	solved, err := a.solvedSection(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionSolved, "## Solved Problems & Verified Answers\n"+solved+"\n\n---")

	categories, err := a.categoriesDetailed(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionCategories, "## Categories and Subcategories\n\n"+categories+"\n\n---")

	topics, err := a.allTopicsList(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionAllTopics, "## All Topics\n\n"+topics)

	return doc, nil
}

// popularDetailed は抜粋付きの人気トピック一覧本文を返す。
func (a *Assembler) popularDetailed(ctx context.Context) (string, error) {
	topics, err := a.ranking.PopularDetailed(ctx, detailedMinLikes, detailedMinViews, detailedLimit)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return placeholderPopular, nil
	}

	var blocks []string
	for _, t := range topics {
		block := fmt.Sprintf("### [%s](%s)\n**Category**: %s | **Views**: %s | **Likes**: %d",
			t.Title, topicURL(a.cfg.BaseURL, &t.Topic),
			categoryLabel(t.CategoryName), numberWithDelimiter(t.Views), t.LikeCount)
		if t.FirstPostRaw != "" {
			block += "\n> " + Excerpt(t.FirstPostRaw, detailedExcerpt)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// allTopicsList は最小閲覧数を満たす全トピックの一覧本文を返す。
// 件数は設定のティア（small/medium/large/all）で制限され、
// 抜粋は設定で有効な場合のみ付与される。
func (a *Assembler) allTopicsList(ctx context.Context) (string, error) {
	topics, err := a.ranking.AllTopics(ctx, a.cfg.MinViews, a.cfg.PostsLimit.Limit())
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return placeholderNoTopics, nil
	}

	var lines []string
	for _, t := range topics {
		var line string
		if t.CategoryID != nil && t.CategorySlug != "" {
			catURL := categorySlugURL(a.cfg.BaseURL, t.CategorySlug, *t.CategoryID)
			line = fmt.Sprintf("**[%s](%s)** - [%s](%s)",
				categoryLabel(t.CategoryName), catURL, t.Title, topicURL(a.cfg.BaseURL, &t.Topic))
		} else {
			line = fmt.Sprintf("**%s** - [%s](%s)",
				categoryLabel(t.CategoryName), t.Title, topicURL(a.cfg.BaseURL, &t.Topic))
		}
		lines = append(lines, line)

		if a.cfg.IncludeExcerpts && t.FirstPostRaw != "" {
			lines = append(lines, "  > "+Excerpt(t.FirstPostRaw, a.cfg.ExcerptLength), "")
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}

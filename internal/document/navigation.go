package document

import (
	"context"
	"fmt"
)

// ナビゲーションドキュメントのセクション名。固定順で組み立てられる。
const (
	SectionHeader       = "header"
	SectionAI           = "ai_instructions"
	SectionQuickFacts   = "quick_facts"
	SectionPopular      = "popular_content"
	SectionFAQ          = "faq"
	SectionCategories   = "categories"
	SectionTrending     = "trending"
	SectionLatest       = "latest_topics"
	SectionContributors = "top_contributors"
	SectionResources    = "additional_resources"
)

// Navigation はサイズ制限付きの索引ドキュメント（llms.txt）を組み立てる。
// セクションは空であっても定型文で埋められ、順序は常に一定となる。
func (a *Assembler) Navigation(ctx context.Context) (string, error) {
	doc, err := a.buildNavigation(ctx)
	if err != nil {
		return "", err
	}
	return doc.Render(), nil
}

// buildNavigation はセクション検証可能な形でナビゲーションを構築する。
func (a *Assembler) buildNavigation(ctx context.Context) (*Document, error) {
	doc := &Document{}

	header := fmt.Sprintf("# %s\n> %s", a.cfg.SiteTitle, a.cfg.SiteDescription)
	if a.cfg.IntroText != "" {
		header += "\n\n" + a.cfg.IntroText
	}
	doc.Add(SectionHeader, header)
	doc.Add(SectionAI, aiInstructions())

	facts, err := a.quickFacts(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionQuickFacts, "## Quick Facts\n"+facts)

	popular, err := a.popularContent(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionPopular, "## Popular Content (Most Helpful)\n"+popular)

	faq, err := a.faqSection(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionFAQ, "## Frequently Asked Questions\n"+faq)

	categories, err := a.categoriesSummary(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionCategories, "## Categories and Subcategories\n"+categories)

	trending, err := a.trendingSection(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionTrending, "## Trending Now (Last 7 Days)\n"+trending)

	latest, err := a.latestSection(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionLatest, "## Latest Topics\n"+latest)

	contributors, err := a.contributorsSection(ctx)
	if err != nil {
		return nil, err
	}
	doc.Add(SectionContributors, "## Top Contributors\n"+contributors)

	doc.Add(SectionResources, "## Additional Resources\n"+a.optionalLinks())

	return doc, nil
}

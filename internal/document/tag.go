package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// TagDocument は単一タグのドキュメントを組み立てる。
// タグ付きトピックをlike数降順→閲覧数降順で最大100件列挙する。
func (a *Assembler) TagDocument(ctx context.Context, tag *model.Tag) (string, error) {
	doc := &Document{}
	tagURLStr := tagURL(a.cfg.BaseURL, tag.Name)

	desc := tag.Description
	if desc == "" {
		desc = placeholderNoDesc
	}
	doc.Add(SectionHeader, fmt.Sprintf("# Tag: %s\n> %s\n\n**Tag URL:** %s\n**Description:** %s",
		tag.Name, a.cfg.SiteTitle, tagURLStr, desc))

	topics, err := a.ranking.TaggedTopics(ctx, tag.Name, tagTopicsLimit)
	if err != nil {
		return "", err
	}

	if len(topics) == 0 {
		doc.Add("topics", "## Topics with this tag\n\nNo topics found with this tag.")
	} else {
		var lines []string
		for _, t := range topics {
			lines = append(lines, fmt.Sprintf("- [%s](%s) - %s (%s views)",
				t.Title, topicURL(a.cfg.BaseURL, t),
				categoryLabel(t.CategoryName), numberWithDelimiter(t.Views)))
		}
		doc.Add("topics", "## Topics with this tag\n\n"+strings.Join(lines, "\n"))
	}

	doc.Add("canonical", canonicalFooter(tagURLStr))

	return doc.Render(), nil
}

package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// TopicDocument は単一トピックの全文トランスクリプトを組み立てる。
// 投稿は非表示・削除済みを除きpost_number昇順で全件、原文マークアップの
// まま出力する（描画済みHTMLではなく、忠実な一次情報として扱うため）。
func (a *Assembler) TopicDocument(ctx context.Context, topic *model.Topic) (string, error) {
	doc := &Document{}
	topicURLStr := topicURL(a.cfg.BaseURL, topic)

	author := topic.Username
	if author == "" {
		author = "unknown"
	}
	lastActivity := "N/A"
	if topic.LastPostedAt != nil {
		lastActivity = formatTimeUTC(*topic.LastPostedAt)
	}

	var categoryLine string
	if topic.CategoryID != nil && topic.CategorySlug != "" {
		categoryLine = fmt.Sprintf("[%s](%s)",
			categoryLabel(topic.CategoryName),
			categorySlugURL(a.cfg.BaseURL, topic.CategorySlug, *topic.CategoryID))
	} else {
		categoryLine = categoryLabel(topic.CategoryName)
	}

	meta := []string{
		"# " + topic.Title,
		"",
		"**Category:** " + categoryLine,
		"**Author:** @" + author,
		"**Created:** " + formatTimeUTC(topic.CreatedAt),
		"**Last Activity:** " + lastActivity,
		"**Views:** " + numberWithDelimiter(topic.Views),
		fmt.Sprintf("**Likes:** %d", topic.LikeCount),
		fmt.Sprintf("**Replies:** %d", topic.Replies()),
		"**URL:** " + topicURLStr,
		"",
		"---",
	}
	doc.Add(SectionHeader, strings.Join(meta, "\n"))

	posts, err := a.posts.ListVisibleByTopic(ctx, topic.ID)
	if err != nil {
		return "", err
	}

	for _, p := range posts {
		postAuthor := p.Username
		if postAuthor == "" {
			postAuthor = "deleted"
		}
		likes := ""
		if p.LikeCount > 0 {
			likes = fmt.Sprintf(" (%d likes)", p.LikeCount)
		}
		doc.Add(fmt.Sprintf("post_%d", p.PostNumber),
			fmt.Sprintf("## Post #%d by @%s%s\n\n%s\n\n---", p.PostNumber, postAuthor, likes, p.Raw))
	}

	doc.Add("canonical", canonicalFooter(topicURLStr))

	return doc.Render(), nil
}

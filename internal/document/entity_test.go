package document

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// --- CategoryDocument テスト ---

// TestAssembler_CategoryDocument_HeaderAndCanonicalFooter はカテゴリドキュメントの
// ヘッダーと正規URLフッター（Canonical / Original contentの2回記載）をテストする。
func TestAssembler_CategoryDocument_HeaderAndCanonicalFooter(t *testing.T) {
	a := newEmptyAssembler()
	category := &model.Category{
		ID: 3, Name: "Support", Slug: "support",
		Description: "Get help with the product.", TopicCount: 1234,
	}

	out, err := a.CategoryDocument(context.Background(), category)
	if err != nil {
		t.Fatalf("CategoryDocument returned error: %v", err)
	}

	catURL := testBaseURL + "/c/support/3"
	if !strings.HasPrefix(out, "# Support\n> Category: Example Forum\n\nGet help with the product.") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "**Category URL:** "+catURL) {
		t.Error("output does not contain the category URL line")
	}
	if !strings.Contains(out, "**Topics in this category:** 1,234") {
		t.Error("output does not contain the delimited topic count")
	}
	if !strings.Contains(out, "**Canonical:** "+catURL+"\n**Original content:** "+catURL) {
		t.Error("output does not contain the canonical footer")
	}
}

// TestAssembler_CategoryDocument_OmitsEmptySections はカテゴリドキュメントで
// 空の人気・最近セクションが出力されないことをテストする。
func TestAssembler_CategoryDocument_OmitsEmptySections(t *testing.T) {
	a := newEmptyAssembler()
	out, err := a.CategoryDocument(context.Background(), &model.Category{ID: 3, Name: "Support", Slug: "support"})
	if err != nil {
		t.Fatalf("CategoryDocument returned error: %v", err)
	}

	if strings.Contains(out, "## Most Popular Topics") {
		t.Error("empty popular section should be omitted")
	}
	if strings.Contains(out, "## Recent Topics") {
		t.Error("empty recent section should be omitted")
	}
	if strings.Contains(out, "## Subcategories") {
		t.Error("empty subcategories section should be omitted")
	}
}

// TestAssembler_CategoryDocument_ListsPopularAndRecent はカテゴリ内の人気10件・
// 最近100件の一覧フォーマットをテストする。
func TestAssembler_CategoryDocument_ListsPopularAndRecent(t *testing.T) {
	topics := &mockTopicRepo{}
	topics.listFn = func(_ context.Context, filter repository.TopicFilter, order repository.TopicOrder, limit int) ([]*model.Topic, error) {
		if filter.CategoryID == nil || *filter.CategoryID != 3 {
			t.Errorf("CategoryID = %v, want 3", filter.CategoryID)
		}
		if order == repository.OrderByLikesThenViews {
			if limit != 10 {
				t.Errorf("popular limit = %d, want 10", limit)
			}
			return []*model.Topic{
				{ID: 42, Title: "Welcome guide", Slug: "welcome-guide", Views: 1200, LikeCount: 8},
			}, nil
		}
		if limit != 100 {
			t.Errorf("recent limit = %d, want 100", limit)
		}
		return []*model.Topic{
			{ID: 43, Title: "New release", Slug: "new-release", Views: 90, PostsCount: 4},
		}, nil
	}

	a := newTestAssembler(newTestConfig(), topics, &mockCategoryRepo{}, &mockPostRepo{}, &mockUserRepo{}, &mockTagRepo{})
	out, err := a.CategoryDocument(context.Background(), &model.Category{ID: 3, Name: "Support", Slug: "support"})
	if err != nil {
		t.Fatalf("CategoryDocument returned error: %v", err)
	}

	if !strings.Contains(out, "- [Welcome guide]("+testBaseURL+"/t/welcome-guide/42) (1,200 views, 8 likes)") {
		t.Errorf("output does not contain the popular topic line\noutput:\n%s", out)
	}
	if !strings.Contains(out, "- [New release]("+testBaseURL+"/t/new-release/43) (90 views, 3 replies)") {
		t.Errorf("output does not contain the recent topic line\noutput:\n%s", out)
	}
}

// --- TopicDocument テスト ---

// TestAssembler_TopicDocument_MetadataAndPosts はトピックドキュメントの
// メタデータブロックと投稿トランスクリプトをテストする。
func TestAssembler_TopicDocument_MetadataAndPosts(t *testing.T) {
	catID := int64(3)
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	lastPosted := time.Date(2025, 6, 10, 18, 45, 0, 0, time.UTC)

	posts := &mockPostRepo{}
	posts.listVisibleByTopicFn = func(_ context.Context, topicID int64) ([]*model.Post, error) {
		if topicID != 42 {
			t.Errorf("topicID = %d, want 42", topicID)
		}
		return []*model.Post{
			{ID: 1, TopicID: 42, PostNumber: 1, Raw: "How do I reset my password?", Username: "alice", LikeCount: 3},
			{ID: 2, TopicID: 42, PostNumber: 2, Raw: "Go to settings and click reset.", Username: "", LikeCount: 0},
		}, nil
	}

	a := newTestAssembler(newTestConfig(), &mockTopicRepo{}, &mockCategoryRepo{}, posts, &mockUserRepo{}, &mockTagRepo{})
	topic := &model.Topic{
		ID: 42, Title: "How do I reset my password?", Slug: "how-do-i-reset-my-password",
		Views: 1200, LikeCount: 8, PostsCount: 2,
		CategoryID: &catID, CategoryName: "Support", CategorySlug: "support",
		Username: "alice", CreatedAt: created, LastPostedAt: &lastPosted,
	}

	out, err := a.TopicDocument(context.Background(), topic)
	if err != nil {
		t.Fatalf("TopicDocument returned error: %v", err)
	}

	topicURLStr := testBaseURL + "/t/how-do-i-reset-my-password/42"
	wantMeta := []string{
		"# How do I reset my password?",
		"**Category:** [Support](" + testBaseURL + "/c/support/3)",
		"**Author:** @alice",
		"**Created:** 2025-06-01 09:30 UTC",
		"**Last Activity:** 2025-06-10 18:45 UTC",
		"**Views:** 1,200",
		"**Likes:** 8",
		"**Replies:** 1",
		"**URL:** " + topicURLStr,
	}
	for _, line := range wantMeta {
		if !strings.Contains(out, line) {
			t.Errorf("output does not contain metadata line %q", line)
		}
	}

	if !strings.Contains(out, "## Post #1 by @alice (3 likes)\n\nHow do I reset my password?\n\n---") {
		t.Error("output does not contain the first post block")
	}
	// 投稿者不明はdeleted、like数0は表記を省く
	if !strings.Contains(out, "## Post #2 by @deleted\n\nGo to settings and click reset.\n\n---") {
		t.Error("output does not contain the second post block")
	}
	if !strings.Contains(out, "**Canonical:** "+topicURLStr) {
		t.Error("output does not contain the canonical footer")
	}
}

// TestAssembler_TopicDocument_MissingMetadataFallbacks は作者・カテゴリ・
// 最終投稿が欠損したトピックのフォールバック表記をテストする。
func TestAssembler_TopicDocument_MissingMetadataFallbacks(t *testing.T) {
	a := newEmptyAssembler()
	topic := &model.Topic{
		ID: 42, Title: "Orphan topic", Slug: "orphan-topic",
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	out, err := a.TopicDocument(context.Background(), topic)
	if err != nil {
		t.Fatalf("TopicDocument returned error: %v", err)
	}

	if !strings.Contains(out, "**Category:** Uncategorized") {
		t.Error("missing category should render as Uncategorized without a link")
	}
	if !strings.Contains(out, "**Author:** @unknown") {
		t.Error("missing author should render as @unknown")
	}
	if !strings.Contains(out, "**Last Activity:** N/A") {
		t.Error("missing last activity should render as N/A")
	}
}

// --- TagDocument テスト ---

// TestAssembler_TagDocument_ListsTaggedTopics はタグドキュメントのヘッダーと
// タグ付きトピック一覧をテストする。
func TestAssembler_TagDocument_ListsTaggedTopics(t *testing.T) {
	topics := &mockTopicRepo{}
	topics.listFn = func(_ context.Context, filter repository.TopicFilter, _ repository.TopicOrder, limit int) ([]*model.Topic, error) {
		if filter.TagName != "golang" {
			t.Errorf("TagName = %q, want %q", filter.TagName, "golang")
		}
		if limit != 100 {
			t.Errorf("limit = %d, want 100", limit)
		}
		return []*model.Topic{
			{ID: 42, Title: "Generics in practice", Slug: "generics-in-practice", Views: 1200, CategoryName: "Programming"},
		}, nil
	}

	a := newTestAssembler(newTestConfig(), topics, &mockCategoryRepo{}, &mockPostRepo{}, &mockUserRepo{}, &mockTagRepo{})
	out, err := a.TagDocument(context.Background(), &model.Tag{Name: "golang", Description: "Go language topics"})
	if err != nil {
		t.Fatalf("TagDocument returned error: %v", err)
	}

	tagURLStr := testBaseURL + "/tag/golang"
	if !strings.HasPrefix(out, "# Tag: golang\n> Example Forum") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "**Tag URL:** "+tagURLStr) {
		t.Error("output does not contain the tag URL line")
	}
	if !strings.Contains(out, "**Description:** Go language topics") {
		t.Error("output does not contain the tag description")
	}
	if !strings.Contains(out, "- [Generics in practice]("+testBaseURL+"/t/generics-in-practice/42) - Programming (1,200 views)") {
		t.Error("output does not contain the tagged topic line")
	}
	if !strings.Contains(out, "**Canonical:** "+tagURLStr) {
		t.Error("output does not contain the canonical footer")
	}
}

// TestAssembler_TagDocument_EmptyTagUsesPlaceholders はトピックも説明も無い
// タグのフォールバック表記をテストする。
func TestAssembler_TagDocument_EmptyTagUsesPlaceholders(t *testing.T) {
	a := newEmptyAssembler()
	out, err := a.TagDocument(context.Background(), &model.Tag{Name: "rare-tag"})
	if err != nil {
		t.Fatalf("TagDocument returned error: %v", err)
	}

	if !strings.Contains(out, "**Description:** "+placeholderNoDesc) {
		t.Error("missing description should use the placeholder")
	}
	if !strings.Contains(out, "## Topics with this tag\n\nNo topics found with this tag.") {
		t.Error("empty topic list should use the placeholder")
	}
}

package document

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// numberWithDelimiter は整数を3桁区切りの文字列にする（例: 12345 → "12,345"）。
func numberWithDelimiter(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// formatTimeUTC はタイムスタンプを "2006-01-02 15:04 UTC" 形式にする。
func formatTimeUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// formatDate はタイムスタンプを "2006-01-02" 形式にする。
func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// topicURL はトピックの正規URLを返す。
func topicURL(baseURL string, t *model.Topic) string {
	return fmt.Sprintf("%s/t/%s/%d", baseURL, url.PathEscape(t.Slug), t.ID)
}

// categoryURL はカテゴリの正規URL（自身のslugのみ）を返す。
func categoryURL(baseURL string, c *model.Category) string {
	return fmt.Sprintf("%s/c/%s/%d", baseURL, url.PathEscape(c.Slug), c.ID)
}

// categorySlugURL はJOIN済みのslug/IDからカテゴリURLを組み立てる。
func categorySlugURL(baseURL, slug string, id int64) string {
	return fmt.Sprintf("%s/c/%s/%d", baseURL, url.PathEscape(slug), id)
}

// categoryPath はサイトマップ用のカテゴリパスを返す。
// 親を持つ場合は親slugのセグメントを先頭に含める。
func categoryPath(c *model.Category) string {
	if c.ParentCategoryID != nil && c.ParentSlug != "" {
		return fmt.Sprintf("%s/%s/%d", url.PathEscape(c.ParentSlug), url.PathEscape(c.Slug), c.ID)
	}
	return fmt.Sprintf("%s/%d", url.PathEscape(c.Slug), c.ID)
}

// tagURL はタグの正規URLを返す。
func tagURL(baseURL, name string) string {
	return fmt.Sprintf("%s/tag/%s", baseURL, url.PathEscape(name))
}

// userURL はユーザーページのURLを返す。
func userURL(baseURL, username string) string {
	return fmt.Sprintf("%s/u/%s", baseURL, url.PathEscape(username))
}

// categoryLabel はカテゴリ名、欠損時は "Uncategorized" を返す。
func categoryLabel(name string) string {
	if name == "" {
		return "Uncategorized"
	}
	return name
}

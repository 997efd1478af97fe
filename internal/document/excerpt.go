package document

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy は抜粋用のHTML除去ポリシー。
// フォーラムの原文マークアップにはHTMLが混在しうるため、
// 引用ブロックに入れる前にタグを全て落とす。
var stripPolicy = struct {
	once   sync.Once
	policy *bluemonday.Policy
}{}

func htmlStripped(s string) string {
	stripPolicy.once.Do(func() {
		stripPolicy.policy = bluemonday.StrictPolicy()
	})
	return stripPolicy.policy.Sanitize(s)
}

// Excerpt は投稿原文から語境界で切り詰めたプレビュー文字列を生成する。
// HTMLタグを除去し、連続する空白・改行を1つのスペースに畳んだ上で、
// 省略記号込みでmaxLen文字以内に収める。同一入力に対して常に同一出力を返す。
func Excerpt(raw string, maxLen int) string {
	const omission = "..."

	text := strings.Join(strings.Fields(htmlStripped(raw)), " ")
	if maxLen <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := maxLen - len(omission)
	if cut <= 0 {
		return omission
	}

	truncated := string(runes[:cut])
	// 単語の途中で切らない。スペースが無い場合はそのまま切る。
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}

	return strings.TrimRight(truncated, " ") + omission
}

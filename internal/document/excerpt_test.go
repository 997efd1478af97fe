package document

import (
	"strings"
	"testing"
)

// TestExcerpt_StripsHTMLAndCollapsesWhitespace はHTMLタグ除去と空白の
// 畳み込みをテストする。
func TestExcerpt_StripsHTMLAndCollapsesWhitespace(t *testing.T) {
	raw := "Go to <b>settings</b>\n\nand   click\t<a href=\"/reset\">reset</a>."
	got := Excerpt(raw, 300)
	want := "Go to settings and click reset."
	if got != want {
		t.Errorf("Excerpt() = %q, want %q", got, want)
	}
}

// TestExcerpt_ShortTextIsUnchanged は上限以内のテキストがそのまま返る
// ことをテストする。
func TestExcerpt_ShortTextIsUnchanged(t *testing.T) {
	got := Excerpt("short text", 100)
	if got != "short text" {
		t.Errorf("Excerpt() = %q, want %q", got, "short text")
	}
}

// TestExcerpt_TruncatesAtWordBoundary は上限超過時に語境界で切られて
// 省略記号が付くことをテストする。
func TestExcerpt_TruncatesAtWordBoundary(t *testing.T) {
	raw := "alpha beta gamma delta epsilon"
	got := Excerpt(raw, 15)

	if !strings.HasSuffix(got, "...") {
		t.Errorf("Excerpt() = %q, want ... suffix", got)
	}
	if len([]rune(got)) > 15 {
		t.Errorf("Excerpt() length = %d, want <= 15", len([]rune(got)))
	}
	// 切断位置は語境界（途中で切れた語を含まない）
	body := strings.TrimSuffix(got, "...")
	for _, w := range strings.Fields(body) {
		if !strings.Contains(raw, w+" ") && !strings.HasSuffix(raw, w) {
			t.Errorf("Excerpt() contains partial word %q", w)
		}
	}
}

// TestExcerpt_IsDeterministic は同一入力に対し常に同一出力が返る
// ことをテストする。
func TestExcerpt_IsDeterministic(t *testing.T) {
	raw := "<p>The quick brown fox jumps over the lazy dog repeatedly.</p>"
	first := Excerpt(raw, 30)
	second := Excerpt(raw, 30)
	if first != second {
		t.Errorf("Excerpt() is not deterministic: %q vs %q", first, second)
	}
}

// TestExcerpt_NoLimitReturnsFullText はmaxLen<=0で全文が返ることをテストする。
func TestExcerpt_NoLimitReturnsFullText(t *testing.T) {
	got := Excerpt("alpha beta gamma", 0)
	if got != "alpha beta gamma" {
		t.Errorf("Excerpt() = %q, want full text", got)
	}
}

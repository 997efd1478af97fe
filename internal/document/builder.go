// Package document はllms.txtファミリーの各ドキュメントを組み立てる。
// 各アセンブラは（リポジトリスナップショット, 設定）→テキストの純関数であり、
// 同一スナップショット・同一時刻に対して常にバイト同一の出力を返す。
package document

import "strings"

// Section はドキュメントを構成する名前付きセクション。
// 文字列連結ではなくセクション列としてドキュメントを保持することで、
// セクションの有無と順序をテストで直接検証できる。
type Section struct {
	Name string
	Text string
}

// Document は順序付きセクション列。
type Document struct {
	sections []Section
}

// Add はセクションを末尾に追加する。
// 同名セクションの重複は想定しない（アセンブラが固定順で1回ずつ追加する）。
func (d *Document) Add(name, text string) {
	d.sections = append(d.sections, Section{Name: name, Text: strings.TrimRight(text, "\n")})
}

// SectionNames は追加順のセクション名を返す。
func (d *Document) SectionNames() []string {
	names := make([]string, len(d.sections))
	for i, s := range d.sections {
		names[i] = s.Name
	}
	return names
}

// Render は全セクションを空行区切りで連結したテキストを返す。
// 末尾は改行1つで終端する。
func (d *Document) Render() string {
	texts := make([]string, len(d.sections))
	for i, s := range d.sections {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n\n") + "\n"
}

// Package model はフォーラムコンテンツの読み取り専用ドメインモデルを定義する。
// 全エンティティはフォーラム側が所有しており、本サブシステムは一切変更しない。
package model

import "time"

// ArchetypeRegular は通常のディスカッションを表すアーキタイプ。
// これ以外（プライベートメッセージ、システムトピック等）は
// 公開ドキュメントの対象から常に除外される。
const ArchetypeRegular = "regular"

// Topic はフォーラムのトピック（スレッド）を表す。
type Topic struct {
	ID           int64
	Title        string
	Slug         string
	Archetype    string
	Visible      bool
	Views        int
	LikeCount    int
	PostsCount   int
	CategoryID   *int64
	UserID       *int64
	CreatedAt    time.Time
	LastPostedAt *time.Time

	// リスト取得時にJOINで埋められる表示用フィールド。
	// カテゴリが無い場合は空文字列のまま。
	CategoryName string
	CategorySlug string
	Username     string
}

// TopicWithFirstPost は抜粋生成用に先頭投稿の原文を伴うトピック。
type TopicWithFirstPost struct {
	Topic
	FirstPostRaw string
}

// Replies は返信数（先頭投稿を除く投稿数）を返す。
func (t *Topic) Replies() int {
	if t.PostsCount <= 1 {
		return 0
	}
	return t.PostsCount - 1
}

// Post はトピック内の投稿を表す。
// Rawはフォーラムのオリジナルマークアップであり、描画済みHTMLではない。
type Post struct {
	ID         int64
	TopicID    int64
	PostNumber int
	Raw        string
	UserID     *int64
	Username   string
	LikeCount  int
	Hidden     bool
	DeletedAt  *time.Time
}

// Category はカテゴリを表す。ネストは最大1段（親のさらに親は存在しない）。
type Category struct {
	ID                 int64
	Name               string
	Slug               string
	Description        string
	DescriptionExcerpt string
	ParentCategoryID   *int64
	ParentSlug         string
	ReadRestricted     bool
	TopicCount         int
	Position           int
}

// Tag はトピックに付与されるタグを表す。Nameが一意キー。
type Tag struct {
	Name        string
	Description string
}

// User はフォーラムユーザーを表す。
// Active かつ staged/bot でないユーザーのみが貢献者統計の対象になる。
type User struct {
	ID            int64
	Username      string
	Name          string
	PostCount     int
	LikesReceived int
	Active        bool
}

// DisplayName は表示名を返す。表示名未設定の場合はusernameにフォールバックする。
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// QuickFacts はフォーラム全体の統計値。
type QuickFacts struct {
	TotalTopics int
	TotalPosts  int
	TotalUsers  int
	TotalSolved int
}

// Package repository はフォーラムデータへの読み取り専用インターフェースを定義する。
// 本サブシステムはフォーラムのストレージに対して一切の書き込みを行わない。
package repository

import (
	"context"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// TopicOrder はトピック一覧の並び順を表す。
// いずれの並び順もIDの昇順を最終タイブレークに含み、出力を決定的にする。
type TopicOrder int

const (
	// OrderByLikesThenViews はlike数降順→閲覧数降順→ID昇順。
	OrderByLikesThenViews TopicOrder = iota
	// OrderByViewsThenLikes は閲覧数降順→like数降順→ID昇順。
	OrderByViewsThenLikes
	// OrderByCreatedDesc は作成日時降順→ID昇順。
	OrderByCreatedDesc
)

// TopicFilter はトピック一覧の絞り込み条件を表す。
// ゼロ値のフィールドは条件なしとして扱われる。
type TopicFilter struct {
	// VisibleOnly はvisibleフラグの立ったトピックに限定する。
	VisibleOnly bool
	// Archetype を指定するとそのアーキタイプに限定する（通常はregular）。
	Archetype string
	// ExcludeRestricted は閲覧制限カテゴリに属するトピックを除外する。
	ExcludeRestricted bool
	// TitleContains はタイトルの部分一致条件。
	TitleContains string
	// MinPostsCount を超える投稿数を持つトピックに限定する（0は無効）。
	MinPostsCount int
	// CreatedAfter より後に作成されたトピックに限定する。
	CreatedAfter time.Time
	// MinViews 以上の閲覧数を持つトピックに限定する（0は無効）。
	MinViews int
	// LikesOverOrViewsOver はlike数がLikesOverを超える、または
	// 閲覧数がViewsOverを超えるトピックに限定するOR条件。
	// どちらも0の場合は条件なし。
	LikesOver int
	ViewsOver int
	// CategoryID を指定するとそのカテゴリ直下のトピックに限定する。
	CategoryID *int64
	// TagName を指定するとそのタグが付いたトピックに限定する。
	TagName string
	// SolvedOnly は解決済みマーカーを持つトピックに限定する。
	SolvedOnly bool
}

// TopicRepository はトピックの読み取りインターフェース。
type TopicRepository interface {
	// List は条件・並び順・件数上限に従いトピック一覧を返す。
	// limit<=0 は無制限。該当なしは空スライス（エラーではない）。
	List(ctx context.Context, filter TopicFilter, order TopicOrder, limit int) ([]*model.Topic, error)

	// ListWithFirstPost はListと同じ選択に加え、各トピックの
	// 先頭投稿（post_number=1）の原文を付与して返す。
	ListWithFirstPost(ctx context.Context, filter TopicFilter, order TopicOrder, limit int) ([]*model.TopicWithFirstPost, error)

	// FindVisibleByID は公開対象のトピックを取得する。
	// 見つからない・非公開・制限カテゴリ所属の場合はnilを返す。
	FindVisibleByID(ctx context.Context, id int64) (*model.Topic, error)

	// Count は条件に合致するトピック数を返す。
	Count(ctx context.Context, filter TopicFilter) (int, error)

	// SolvedSupported は解決済みマーカー機構（topic_custom_fields）が
	// 利用可能かどうかを返す。照会失敗は「利用不可」であり、エラーではない。
	SolvedSupported(ctx context.Context) bool

	// MaxCreatedAt は最新トピックの作成日時を返す。
	// トピックが存在しない場合はゼロ値を返す。
	MaxCreatedAt(ctx context.Context) (time.Time, error)
}

// CategoryFilter はカテゴリ一覧の絞り込み条件を表す。
type CategoryFilter struct {
	// ExcludeRestricted は閲覧制限カテゴリを除外する。
	ExcludeRestricted bool
	// ParentID による絞り込み。RootOnly=trueなら親なしのみ、
	// ParentID指定ならその直下のみ。
	RootOnly bool
	ParentID *int64
}

// CategoryRepository はカテゴリの読み取りインターフェース。
type CategoryRepository interface {
	// List は条件に合致するカテゴリをposition昇順で返す。
	List(ctx context.Context, filter CategoryFilter) ([]*model.Category, error)

	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Category, error)

	// MaxUpdatedAt は最新カテゴリ更新日時を返す。
	// カテゴリが存在しない場合はゼロ値を返す。
	MaxUpdatedAt(ctx context.Context) (time.Time, error)
}

// PostRepository は投稿の読み取りインターフェース。
type PostRepository interface {
	// ListVisibleByTopic はトピックの投稿のうち非表示・削除済みを除いた
	// 全件をpost_number昇順で返す。
	ListVisibleByTopic(ctx context.Context, topicID int64) ([]*model.Post, error)

	// CountVisible は非表示・削除済みを除いた全投稿数を返す。
	CountVisible(ctx context.Context) (int, error)
}

// UserRepository はユーザーの読み取りインターフェース。
type UserRepository interface {
	// ListContributors はアクティブな実ユーザーのうち投稿数がminPostsを
	// 超えるものを、被like数降順→ID昇順で返す。
	ListContributors(ctx context.Context, minPosts, limit int) ([]*model.User, error)

	// CountReal はアクティブな実ユーザー数を返す。
	CountReal(ctx context.Context) (int, error)
}

// TagRepository はタグの読み取りインターフェース。
type TagRepository interface {
	// List は全タグを名前順で返す。
	List(ctx context.Context) ([]*model.Tag, error)

	// FindByName は指定名のタグを取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Tag, error)
}

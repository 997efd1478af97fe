package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// PostgresTopicRepo はPostgreSQLを使用したトピックリポジトリ。
type PostgresTopicRepo struct {
	db *sql.DB
}

// NewPostgresTopicRepo はPostgresTopicRepoを生成する。
func NewPostgresTopicRepo(db *sql.DB) *PostgresTopicRepo {
	return &PostgresTopicRepo{db: db}
}

// topicColumns はトピック取得で常にSELECTするカラム。
// カテゴリ・ユーザーはLEFT JOINのため欠損時は空文字列になる。
const topicColumns = `t.id, t.title, t.slug, t.archetype, t.visible,
       t.views, t.like_count, t.posts_count, t.category_id, t.user_id,
       t.created_at, t.last_posted_at,
       COALESCE(c.name, ''), COALESCE(c.slug, ''), COALESCE(u.username, '')`

const topicJoins = ` FROM topics t
 LEFT JOIN categories c ON c.id = t.category_id
 LEFT JOIN users u ON u.id = t.user_id`

// buildTopicWhere はTopicFilterをWHERE句とバインド引数に変換する。
// 引数番号はargsの現在長から連番で振られる。
func buildTopicWhere(filter TopicFilter, args []any) (string, []any) {
	var conds []string

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	if filter.VisibleOnly {
		conds = append(conds, "t.visible = TRUE")
	}
	if filter.Archetype != "" {
		conds = append(conds, "t.archetype = "+next())
		args = append(args, filter.Archetype)
	}
	if filter.ExcludeRestricted {
		conds = append(conds, "c.id IS NOT NULL AND c.read_restricted = FALSE")
	}
	if filter.TitleContains != "" {
		conds = append(conds, "t.title LIKE "+next())
		args = append(args, "%"+filter.TitleContains+"%")
	}
	if filter.MinPostsCount > 0 {
		conds = append(conds, "t.posts_count > "+next())
		args = append(args, filter.MinPostsCount)
	}
	if !filter.CreatedAfter.IsZero() {
		conds = append(conds, "t.created_at > "+next())
		args = append(args, filter.CreatedAfter)
	}
	if filter.MinViews > 0 {
		conds = append(conds, "t.views >= "+next())
		args = append(args, filter.MinViews)
	}
	if filter.LikesOver > 0 || filter.ViewsOver > 0 {
		likeArg := next()
		args = append(args, filter.LikesOver)
		viewArg := next()
		args = append(args, filter.ViewsOver)
		conds = append(conds, fmt.Sprintf("(t.like_count > %s OR t.views > %s)", likeArg, viewArg))
	}
	if filter.CategoryID != nil {
		conds = append(conds, "t.category_id = "+next())
		args = append(args, *filter.CategoryID)
	}
	if filter.TagName != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM topic_tags tt
			JOIN tags tg ON tg.id = tt.tag_id
			WHERE tt.topic_id = t.id AND tg.name = `+next()+")")
		args = append(args, filter.TagName)
	}
	if filter.SolvedOnly {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM topic_custom_fields tcf
			WHERE tcf.topic_id = t.id AND tcf.name = 'accepted_answer_post_id')`)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause は並び順をORDER BY句に変換する。
// すべての並び順がID昇順のタイブレークを含み、結果を決定的にする。
func orderClause(order TopicOrder) string {
	switch order {
	case OrderByViewsThenLikes:
		return " ORDER BY t.views DESC, t.like_count DESC, t.id ASC"
	case OrderByCreatedDesc:
		return " ORDER BY t.created_at DESC, t.id ASC"
	default:
		return " ORDER BY t.like_count DESC, t.views DESC, t.id ASC"
	}
}

// List は条件・並び順・件数上限に従いトピック一覧を返す。
func (r *PostgresTopicRepo) List(ctx context.Context, filter TopicFilter, order TopicOrder, limit int) ([]*model.Topic, error) {
	query := "SELECT " + topicColumns + topicJoins
	where, args := buildTopicWhere(filter, nil)
	query += where + orderClause(order)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("トピック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var topics []*model.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("トピック一覧の読み取りに失敗しました: %w", err)
	}

	return topics, nil
}

// ListWithFirstPost は選択結果に先頭投稿の原文を付与して返す。
// 先頭投稿が非表示・削除済み・欠損の場合、原文は空文字列になる。
func (r *PostgresTopicRepo) ListWithFirstPost(ctx context.Context, filter TopicFilter, order TopicOrder, limit int) ([]*model.TopicWithFirstPost, error) {
	query := "SELECT " + topicColumns + ", COALESCE(fp.raw, '')" + topicJoins + `
 LEFT JOIN posts fp ON fp.topic_id = t.id AND fp.post_number = 1
	AND fp.hidden = FALSE AND fp.deleted_at IS NULL`
	where, args := buildTopicWhere(filter, nil)
	query += where + orderClause(order)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("トピック一覧（先頭投稿付き）の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var topics []*model.TopicWithFirstPost
	for rows.Next() {
		t := &model.TopicWithFirstPost{}
		var categoryID, userID sql.NullInt64
		var lastPostedAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Slug, &t.Archetype, &t.Visible,
			&t.Views, &t.LikeCount, &t.PostsCount, &categoryID, &userID,
			&t.CreatedAt, &lastPostedAt,
			&t.CategoryName, &t.CategorySlug, &t.Username,
			&t.FirstPostRaw,
		); err != nil {
			return nil, fmt.Errorf("トピック行の読み取りに失敗しました: %w", err)
		}
		if categoryID.Valid {
			t.CategoryID = &categoryID.Int64
		}
		if userID.Valid {
			t.UserID = &userID.Int64
		}
		if lastPostedAt.Valid {
			t.LastPostedAt = &lastPostedAt.Time
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("トピック一覧（先頭投稿付き）の読み取りに失敗しました: %w", err)
	}

	return topics, nil
}

// FindVisibleByID は公開対象のトピックを取得する。
// 非公開・regular以外・制限カテゴリ所属は見つからない扱いでnilを返す。
func (r *PostgresTopicRepo) FindVisibleByID(ctx context.Context, id int64) (*model.Topic, error) {
	query := "SELECT " + topicColumns + topicJoins + `
 WHERE t.id = $1 AND t.visible = TRUE AND t.archetype = $2
   AND c.id IS NOT NULL AND c.read_restricted = FALSE`

	row := r.db.QueryRowContext(ctx, query, id, model.ArchetypeRegular)
	topic, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}

	return topic, nil
}

// Count は条件に合致するトピック数を返す。
func (r *PostgresTopicRepo) Count(ctx context.Context, filter TopicFilter) (int, error) {
	query := "SELECT COUNT(*)" + topicJoins
	where, args := buildTopicWhere(filter, nil)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("トピック数の取得に失敗しました: %w", err)
	}

	return count, nil
}

// SolvedSupported は解決済みマーカー用テーブルの有無を返す。
// 照会エラーは「利用不可」として扱い、エラーを返さない。
func (r *PostgresTopicRepo) SolvedSupported(ctx context.Context) bool {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT to_regclass('topic_custom_fields') IS NOT NULL`,
	).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}

// MaxCreatedAt は最新トピックの作成日時を返す。
func (r *PostgresTopicRepo) MaxCreatedAt(ctx context.Context) (time.Time, error) {
	var max sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM topics`).Scan(&max)
	if err != nil {
		return time.Time{}, fmt.Errorf("最新トピック作成日時の取得に失敗しました: %w", err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return max.Time, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*model.Topic, error) {
	t := &model.Topic{}
	var categoryID, userID sql.NullInt64
	var lastPostedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.Archetype, &t.Visible,
		&t.Views, &t.LikeCount, &t.PostsCount, &categoryID, &userID,
		&t.CreatedAt, &lastPostedAt,
		&t.CategoryName, &t.CategorySlug, &t.Username,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("トピック行の読み取りに失敗しました: %w", err)
	}

	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if userID.Valid {
		t.UserID = &userID.Int64
	}
	if lastPostedAt.Valid {
		t.LastPostedAt = &lastPostedAt.Time
	}

	return t, nil
}

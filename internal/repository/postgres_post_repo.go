package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// ListVisibleByTopic は非表示・削除済みを除いた投稿をpost_number昇順で返す。
// Rawは描画済みHTMLではなくオリジナルマークアップを保持する。
func (r *PostgresPostRepo) ListVisibleByTopic(ctx context.Context, topicID int64) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.topic_id, p.post_number, p.raw, p.user_id,
		        COALESCE(u.username, ''), p.like_count, p.hidden, p.deleted_at
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.user_id
		 WHERE p.topic_id = $1 AND p.hidden = FALSE AND p.deleted_at IS NULL
		 ORDER BY p.post_number ASC`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		p := &model.Post{}
		var userID sql.NullInt64
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.TopicID, &p.PostNumber, &p.Raw, &userID,
			&p.Username, &p.LikeCount, &p.Hidden, &deletedAt,
		); err != nil {
			return nil, fmt.Errorf("投稿行の読み取りに失敗しました: %w", err)
		}
		if userID.Valid {
			p.UserID = &userID.Int64
		}
		if deletedAt.Valid {
			p.DeletedAt = &deletedAt.Time
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の読み取りに失敗しました: %w", err)
	}

	return posts, nil
}

// CountVisible は非表示・削除済みを除いた全投稿数を返す。
func (r *PostgresPostRepo) CountVisible(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE hidden = FALSE AND deleted_at IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("投稿数の取得に失敗しました: %w", err)
	}
	return count, nil
}

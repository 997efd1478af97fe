package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
// 「実ユーザー」はstagedでなくIDが正（システムユーザーは負のID）のもの。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// realUserWhere はアクティブな実ユーザーの共通条件。
const realUserWhere = `active = TRUE AND staged = FALSE AND id > 0`

// ListContributors は投稿数がminPostsを超える実ユーザーを
// 被like数降順→ID昇順で返す。
func (r *PostgresUserRepo) ListContributors(ctx context.Context, minPosts, limit int) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, COALESCE(name, ''), post_count, likes_received, active
		 FROM users
		 WHERE `+realUserWhere+` AND post_count > $1
		 ORDER BY likes_received DESC, id ASC
		 LIMIT $2`,
		minPosts, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("貢献者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PostCount, &u.LikesReceived, &u.Active); err != nil {
			return nil, fmt.Errorf("ユーザー行の読み取りに失敗しました: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("貢献者一覧の読み取りに失敗しました: %w", err)
	}

	return users, nil
}

// CountReal はアクティブな実ユーザー数を返す。
func (r *PostgresUserRepo) CountReal(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE `+realUserWhere,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// List は全タグを名前昇順で返す。
func (r *PostgresTagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, COALESCE(description, '') FROM tags ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		t := &model.Tag{}
		if err := rows.Scan(&t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("タグ行の読み取りに失敗しました: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タグ一覧の読み取りに失敗しました: %w", err)
	}

	return tags, nil
}

// FindByName は指定名のタグを取得する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	t := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT name, COALESCE(description, '') FROM tags WHERE name = $1`,
		name,
	).Scan(&t.Name, &t.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}

	return t, nil
}

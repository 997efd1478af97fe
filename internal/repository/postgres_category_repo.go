package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

const categoryColumns = `c.id, c.name, c.slug, COALESCE(c.description, ''),
       COALESCE(c.description_excerpt, ''), c.parent_category_id,
       COALESCE(p.slug, ''), c.read_restricted, c.topic_count, c.position`

const categoryJoins = ` FROM categories c
 LEFT JOIN categories p ON p.id = c.parent_category_id`

// List は条件に合致するカテゴリをposition昇順で返す。
func (r *PostgresCategoryRepo) List(ctx context.Context, filter CategoryFilter) ([]*model.Category, error) {
	query := "SELECT " + categoryColumns + categoryJoins + " WHERE 1=1"
	var args []any

	if filter.ExcludeRestricted {
		query += " AND c.read_restricted = FALSE"
	}
	if filter.RootOnly {
		query += " AND c.parent_category_id IS NULL"
	} else if filter.ParentID != nil {
		query += fmt.Sprintf(" AND c.parent_category_id = $%d", len(args)+1)
		args = append(args, *filter.ParentID)
	}
	query += " ORDER BY c.position ASC, c.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の読み取りに失敗しました: %w", err)
	}

	return categories, nil
}

// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+categoryJoins+" WHERE c.id = $1", id)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}

	return c, nil
}

// MaxUpdatedAt は最新カテゴリ更新日時を返す。
func (r *PostgresCategoryRepo) MaxUpdatedAt(ctx context.Context) (time.Time, error) {
	var max sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM categories`).Scan(&max)
	if err != nil {
		return time.Time{}, fmt.Errorf("最新カテゴリ更新日時の取得に失敗しました: %w", err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return max.Time, nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	c := &model.Category{}
	var parentID sql.NullInt64

	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.DescriptionExcerpt, &parentID,
		&c.ParentSlug, &c.ReadRestricted, &c.TopicCount, &c.Position,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("カテゴリ行の読み取りに失敗しました: %w", err)
	}

	if parentID.Valid {
		c.ParentCategoryID = &parentID.Int64
	}

	return c, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vasantisuthar/journal/internal/model"
)

const blogColumns = `id, user_id, title, post, created_at, updated_at`

// PostgresBlogRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresBlogRepo struct {
	db *sql.DB
}

// NewPostgresBlogRepo はPostgresBlogRepoを生成する。
func NewPostgresBlogRepo(db *sql.DB) *PostgresBlogRepo {
	return &PostgresBlogRepo{db: db}
}

// Create は記事を作成する。
func (r *PostgresBlogRepo) Create(ctx context.Context, blog *model.Blog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blogs (id, user_id, title, post, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		blog.ID, blog.UserID, blog.Title, blog.Post, blog.CreatedAt, blog.UpdatedAt,
	)
	if err != nil {
		return wrapStoreError("failed to insert blog", err)
	}
	return nil
}

// ListByUserID はユーザーの記事一覧をcreated_at降順で返す。
func (r *PostgresBlogRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Blog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blogColumns+`
		 FROM blogs
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapStoreError("failed to list blogs", err)
	}
	defer rows.Close()

	var blogs []*model.Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, wrapStoreError("failed to scan blog", err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("failed to iterate blogs", err)
	}

	return blogs, nil
}

// FindByUserAndTitle はタイトル完全一致（大文字小文字を区別）で記事を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresBlogRepo) FindByUserAndTitle(ctx context.Context, userID, title string) (*model.Blog, error) {
	blog, err := scanBlog(r.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+`
		 FROM blogs
		 WHERE user_id = $1 AND title = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, title,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError("failed to find blog by title", err)
	}
	return blog, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresBlogRepo) FindByID(ctx context.Context, userID, id string) (*model.Blog, error) {
	blog, err := scanBlog(r.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError("failed to find blog by ID", err)
	}
	return blog, nil
}

// Update は記事のタイトルと本文を更新する。
// user_idとidは条件にのみ使用し、更新対象には含めない。
func (r *PostgresBlogRepo) Update(ctx context.Context, blog *model.Blog) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE blogs
		 SET title = $1, post = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		blog.Title, blog.Post, blog.UpdatedAt, blog.ID, blog.UserID,
	)
	if err != nil {
		return wrapStoreError("failed to update blog", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapStoreError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。対象が存在しなくてもエラーにしない。
func (r *PostgresBlogRepo) DeleteByID(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM blogs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return wrapStoreError("failed to delete blog", err)
	}
	return nil
}

func scanBlog(row rowScanner) (*model.Blog, error) {
	blog := &model.Blog{}
	if err := row.Scan(&blog.ID, &blog.UserID, &blog.Title, &blog.Post, &blog.CreatedAt, &blog.UpdatedAt); err != nil {
		return nil, err
	}
	return blog, nil
}

// compile-time interface check
var _ BlogRepository = (*PostgresBlogRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tumblelog/internal/models"

	"github.com/google/uuid"
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository { return &PostRepository{db: db} }

var _ Posts = (*PostRepository)(nil)

const (
	insertPostSQL        = `INSERT INTO posts (id, user_id, title, body, file_path, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	selectPostSQL        = `SELECT id, user_id, title, body, file_path, created_at FROM posts WHERE id = ?`
	selectPostsByUserSQL = `SELECT id, user_id, title, body, file_path, created_at FROM posts WHERE user_id = ? ORDER BY created_at DESC`
	deletePostSQL        = `DELETE FROM posts WHERE id = ? AND user_id = ?`
)

// Create inserts a new post. If ID or CreatedAt are empty, they’re set.
func (r *PostRepository) Create(ctx context.Context, p models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	} else {
		p.CreatedAt = p.CreatedAt.UTC()
	}

	var filePath *string
	if p.FilePath != "" {
		filePath = &p.FilePath
	}
	var body *string
	if p.Body != "" {
		body = &p.Body
	}

	_, err := r.db.ExecContext(ctx, insertPostSQL,
		p.ID, p.UserID, p.Title, body, filePath, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post %q: %w", p.ID, err)
	}
	return nil
}

// GetByID fetches a post by id. Returns (nil, nil) if not found.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPostSQL, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %q: %w", id, err)
	}
	return p, nil
}

// List returns posts filtered by [from, to] (inclusive), newest first, at
// most limit rows (limit <= 0 means no limit).
func (r *PostRepository) List(ctx context.Context, from, to time.Time, limit int) ([]models.Post, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, to.UTC())
	}

	q := `SELECT id, user_id, title, body, file_path, created_at FROM posts`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListByUser returns all posts by one author, newest first.
func (r *PostRepository) ListByUser(ctx context.Context, userID int) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPostsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select posts for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// Delete removes a post owned by userID. Returns false when no matching row
// existed (unknown id or wrong owner).
func (r *PostRepository) Delete(ctx context.Context, id string, userID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, deletePostSQL, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete post %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for post %q: %w", id, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p        models.Post
		body     sql.NullString
		filePath sql.NullString
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &body, &filePath, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Body = body.String
	p.FilePath = filePath.String
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	out := make([]models.Post, 0, 16)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

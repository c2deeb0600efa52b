package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type PostRepo struct {
	db *sql.DB
}

func (r *PostRepo) CreatePost(ctx context.Context, senderID uuid.UUID, title string, content string) (models.Post, error) {
	now := time.Now().UTC()
	post := models.Post{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		SenderID:  senderID,
		Title:     title,
		Content:   content,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, created_at, updated_at, sender_id, title, content) VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, post.CreatedAt, post.UpdatedAt, post.SenderID, post.Title, post.Content,
	)
	switch {
	case err == nil:
		return post, nil
	case isForeignKeyViolation(err):
		return models.Post{}, apperrors.ErrUserNotFound
	default:
		return models.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
}

const selectPost = `
	SELECT id, created_at, updated_at, sender_id, title, content
	FROM posts
`

func (r *PostRepo) GetPost(ctx context.Context, id uuid.UUID) (models.Post, error) {
	var p models.Post
	err := r.db.QueryRowContext(ctx, selectPost+"WHERE id = ?", id).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.SenderID, &p.Title, &p.Content)

	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, sql.ErrNoRows):
		return p, apperrors.ErrPostNotFound
	default:
		return p, fmt.Errorf("failed to get post: %w", err)
	}
}

func (r *PostRepo) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query, args := selectPost, []any{}
	if filter.SenderID != uuid.Nil {
		query += "WHERE sender_id = ? "
		args = append(args, filter.SenderID)
	}
	query += "ORDER BY created_at, rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.SenderID, &p.Title, &p.Content); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (r *PostRepo) UpdatePost(ctx context.Context, id uuid.UUID, update models.PostUpdate) (models.Post, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = COALESCE(?, title), content = COALESCE(?, content), updated_at = ? WHERE id = ?`,
		update.Title, update.Content, time.Now().UTC(), id,
	)
	if err := affected(res, err, apperrors.ErrPostNotFound); err != nil {
		return models.Post{}, err
	}

	return r.GetPost(ctx, id)
}

func (r *PostRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	return affected(res, err, apperrors.ErrPostNotFound)
}

// Return notFound if statement changed nothing
func affected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case n == 0:
		return notFound
	default:
		return nil
	}
}

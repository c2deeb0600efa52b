package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type PostRepo struct {
	DB DBTX
}

const postColumns = `id, created_at, updated_at, sender_id, title, content`

const createPost = `-- name: CreatePost
INSERT INTO posts (id, sender_id, title, content)
VALUES ($1, $2, $3, $4)
RETURNING ` + postColumns

func (r *PostRepo) CreatePost(ctx context.Context, senderID uuid.UUID, title string, content string) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, createPost, uuid.New(), senderID, title, content)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case err == nil:
		return post, nil
	case isForeignKeyViolation(err, ""):
		return post, apperrors.ErrUserNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

const getPost = `-- name: GetPost
SELECT ` + postColumns + ` FROM posts
WHERE id = $1
`

func (r *PostRepo) GetPost(ctx context.Context, id uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPost, id)
	return collectPost(rows)
}

const listPosts = `-- name: ListPosts
SELECT ` + postColumns + ` FROM posts
WHERE $1::uuid IS NULL OR sender_id = $1
ORDER BY created_at, id
`

func (r *PostRepo) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	var sender *uuid.UUID
	if filter.SenderID != uuid.Nil {
		sender = &filter.SenderID
	}

	rows, _ := r.DB.Query(ctx, listPosts, sender)
	posts, err := pgx.CollectRows(rows, rowToPost)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

const updatePost = `-- name: UpdatePost
UPDATE posts
SET title = COALESCE($2, title),
    content = COALESCE($3, content),
    updated_at = now()
WHERE id = $1
RETURNING ` + postColumns

func (r *PostRepo) UpdatePost(ctx context.Context, id uuid.UUID, update models.PostUpdate) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, updatePost, id, update.Title, update.Content)
	return collectPost(rows)
}

const deletePost = `-- name: DeletePost
DELETE FROM posts
WHERE id = $1
`

func (r *PostRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePost, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrPostNotFound
	default:
		return nil
	}
}

func collectPost(rows pgx.Rows) (models.Post, error) {
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.SenderID, &p.Title, &p.Content)
	return p, err
}

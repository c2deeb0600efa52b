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

type CommentRepo struct {
	DB DBTX
}

const commentColumns = `id, created_at, updated_at, post_id, sender_id, content`

const createComment = `-- name: CreateComment
INSERT INTO comments (id, post_id, sender_id, content)
VALUES ($1, $2, $3, $4)
RETURNING ` + commentColumns

func (r *CommentRepo) CreateComment(ctx context.Context, postID uuid.UUID, senderID uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, createComment, uuid.New(), postID, senderID, content)
	comment, err := pgx.CollectOneRow(rows, rowToComment)

	switch {
	case err == nil:
		return comment, nil
	case isForeignKeyViolation(err, "comments_post_id_fkey"):
		return comment, apperrors.ErrPostNotFound
	case isForeignKeyViolation(err, ""):
		return comment, apperrors.ErrUserNotFound
	default:
		return comment, fmt.Errorf("db error: %w", err)
	}
}

const getComment = `-- name: GetComment
SELECT ` + commentColumns + ` FROM comments
WHERE id = $1
`

func (r *CommentRepo) GetComment(ctx context.Context, id uuid.UUID) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, getComment, id)
	return collectComment(rows)
}

const listComments = `-- name: ListComments
SELECT ` + commentColumns + ` FROM comments
WHERE $1::uuid IS NULL OR post_id = $1
ORDER BY created_at, id
`

func (r *CommentRepo) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var post *uuid.UUID
	if postID != uuid.Nil {
		post = &postID
	}

	rows, _ := r.DB.Query(ctx, listComments, post)
	comments, err := pgx.CollectRows(rows, rowToComment)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comments, nil
}

const updateComment = `-- name: UpdateComment
UPDATE comments
SET content = $2, updated_at = now()
WHERE id = $1
RETURNING ` + commentColumns

func (r *CommentRepo) UpdateComment(ctx context.Context, id uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, updateComment, id, content)
	return collectComment(rows)
}

const deleteComment = `-- name: DeleteComment
DELETE FROM comments
WHERE id = $1
`

func (r *CommentRepo) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteComment, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrCommentNotFound
	default:
		return nil
	}
}

func collectComment(rows pgx.Rows) (models.Comment, error) {
	comment, err := pgx.CollectOneRow(rows, rowToComment)

	switch {
	case err == nil:
		return comment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return comment, apperrors.ErrCommentNotFound
	default:
		return comment, fmt.Errorf("db error: %w", err)
	}
}

func rowToComment(row pgx.CollectableRow) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.PostID, &c.SenderID, &c.Content)
	return c, err
}

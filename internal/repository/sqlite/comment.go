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

type CommentRepo struct {
	db *sql.DB
}

func (r *CommentRepo) CreateComment(ctx context.Context, postID uuid.UUID, senderID uuid.UUID, content string) (models.Comment, error) {
	// Foreign key error does not tell which key failed, so look for the post first
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)", postID).Scan(&exists)
	switch {
	case err != nil:
		return models.Comment{}, fmt.Errorf("failed to check post: %w", err)
	case !exists:
		return models.Comment{}, apperrors.ErrPostNotFound
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		PostID:    postID,
		SenderID:  senderID,
		Content:   content,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO comments (id, created_at, updated_at, post_id, sender_id, content) VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.CreatedAt, comment.UpdatedAt, comment.PostID, comment.SenderID, comment.Content,
	)
	switch {
	case err == nil:
		return comment, nil
	case isForeignKeyViolation(err):
		return models.Comment{}, apperrors.ErrUserNotFound
	default:
		return models.Comment{}, fmt.Errorf("failed to insert comment: %w", err)
	}
}

const selectComment = `
	SELECT id, created_at, updated_at, post_id, sender_id, content
	FROM comments
`

func (r *CommentRepo) GetComment(ctx context.Context, id uuid.UUID) (models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRowContext(ctx, selectComment+"WHERE id = ?", id).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.PostID, &c.SenderID, &c.Content)

	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, sql.ErrNoRows):
		return c, apperrors.ErrCommentNotFound
	default:
		return c, fmt.Errorf("failed to get comment: %w", err)
	}
}

func (r *CommentRepo) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	query, args := selectComment, []any{}
	if postID != uuid.Nil {
		query += "WHERE post_id = ? "
		args = append(args, postID)
	}
	query += "ORDER BY created_at, rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.PostID, &c.SenderID, &c.Content); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (r *CommentRepo) UpdateComment(ctx context.Context, id uuid.UUID, content string) (models.Comment, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), id,
	)
	if err := affected(res, err, apperrors.ErrCommentNotFound); err != nil {
		return models.Comment{}, err
	}

	return r.GetComment(ctx, id)
}

func (r *CommentRepo) DeleteComment(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	return affected(res, err, apperrors.ErrCommentNotFound)
}

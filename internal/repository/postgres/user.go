package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, updated_at, username, email, password_hash, refresh_tokens`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), username, email, hashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case isUniqueViolation(err):
		return user, apperrors.ErrUserAlreadyExists
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET username = COALESCE($2, username),
    email = COALESCE($3, email),
    updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, id, update.Username, update.Email)
	user, err := collectUser(rows)

	if isUniqueViolation(err) {
		return user, apperrors.ErrUserAlreadyExists
	}
	return user, err
}

const updatePassword = `-- name: UpdatePassword
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE id = $1
`

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	tag, err := r.DB.Exec(ctx, updatePassword, id, hashedPassword)
	return userAffected(tag, err)
}

const addRefreshToken = `-- name: AddRefreshToken
UPDATE users
SET refresh_tokens = array_append(refresh_tokens, $2)
WHERE id = $1
`

func (r *UserRepo) AddRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	tag, err := r.DB.Exec(ctx, addRefreshToken, id, token)
	return userAffected(tag, err)
}

const removeRefreshToken = `-- name: RemoveRefreshToken
UPDATE users
SET refresh_tokens = array_remove(refresh_tokens, $2)
WHERE id = $1
`

func (r *UserRepo) RemoveRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	tag, err := r.DB.Exec(ctx, removeRefreshToken, id, token)
	return userAffected(tag, err)
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

// Posts and comments of the user are removed by ON DELETE CASCADE
func (r *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, id)
	return userAffected(tag, err)
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func userAffected(tag pgconn.CommandTag, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.HashedPassword, &u.RefreshTokens)
	return u, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Empty constraint matches any foreign key
func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.ForeignKeyViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

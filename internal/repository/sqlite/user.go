package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

const createUser = `
	INSERT INTO users (id, created_at, updated_at, username, email, password_hash)
	VALUES (?, ?, ?, ?, ?, ?)
`

func (r *UserRepo) CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error) {
	now := time.Now().UTC()
	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		RefreshTokens:  []string{},
	}

	_, err := r.db.ExecContext(ctx, createUser, user.ID, user.CreatedAt, user.UpdatedAt, user.Username, user.Email, user.HashedPassword)
	switch {
	case err == nil:
		return user, nil
	case isUniqueViolation(err):
		return models.User{}, apperrors.ErrUserAlreadyExists
	default:
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
}

const selectUser = `
	SELECT id, created_at, updated_at, username, email, password_hash, refresh_tokens
	FROM users
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+"WHERE id = ?", id))
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+"WHERE email = ?", email))
}

const updateProfile = `
	UPDATE users
	SET username = COALESCE(?, username),
	    email = COALESCE(?, email),
	    updated_at = ?
	WHERE id = ?
`

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	res, err := r.db.ExecContext(ctx, updateProfile, update.Username, update.Email, time.Now().UTC(), id)
	if isUniqueViolation(err) {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}
	if err := affected(res, err, apperrors.ErrUserNotFound); err != nil {
		return models.User{}, err
	}

	return r.GetUserByID(ctx, id)
}

const updatePassword = `
	UPDATE users
	SET password_hash = ?, updated_at = ?
	WHERE id = ?
`

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	res, err := r.db.ExecContext(ctx, updatePassword, hashedPassword, time.Now().UTC(), id)
	return affected(res, err, apperrors.ErrUserNotFound)
}

const addRefreshToken = `
	UPDATE users
	SET refresh_tokens = json_insert(refresh_tokens, '$[#]', ?)
	WHERE id = ?
`

func (r *UserRepo) AddRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	res, err := r.db.ExecContext(ctx, addRefreshToken, token, id)
	return affected(res, err, apperrors.ErrUserNotFound)
}

const removeRefreshToken = `
	UPDATE users
	SET refresh_tokens = (
		SELECT COALESCE(json_group_array(value), '[]')
		FROM json_each(users.refresh_tokens)
		WHERE value <> ?
	)
	WHERE id = ?
`

func (r *UserRepo) RemoveRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	res, err := r.db.ExecContext(ctx, removeRefreshToken, token, id)
	return affected(res, err, apperrors.ErrUserNotFound)
}

// Posts and comments of the user are removed by ON DELETE CASCADE
func (r *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	return affected(res, err, apperrors.ErrUserNotFound)
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	var tokens string

	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.HashedPassword, &tokens)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return u, apperrors.ErrUserNotFound
	case err != nil:
		return u, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal([]byte(tokens), &u.RefreshTokens); err != nil {
		return u, fmt.Errorf("malformed refresh tokens of user %s: %w", u.ID, err)
	}

	return u, nil
}

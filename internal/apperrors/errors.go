package apperrors

import (
	"errors"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Access token outcomes, kept apart so the gate can answer each one differently
	ErrTokenMissing = errors.New("access token is missing")
	ErrTokenRevoked = errors.New("token is invalidated")
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")

	ErrRefreshTokenMissing = errors.New("refresh token is missing")
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid")

	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotOwner        = errors.New("resource belongs to another user")
)

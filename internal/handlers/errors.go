package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
)

// Known service errors and how they are answered
var serviceErrors = []struct {
	err     error
	code    int
	message string
}{
	{apperrors.ErrUserAlreadyExists, http.StatusBadRequest, "User already exists"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{apperrors.ErrTokenMissing, http.StatusUnauthorized, "Access token is missing"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, "Token is invalidated"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, "Token is expired"},
	{apperrors.ErrTokenInvalid, http.StatusForbidden, "Token is invalid"},
	{apperrors.ErrRefreshTokenMissing, http.StatusUnauthorized, "Refresh token is missing"},
	{apperrors.ErrRefreshTokenInvalid, http.StatusForbidden, "Invalid refresh token"},
	{apperrors.ErrNotOwner, http.StatusForbidden, "Only the sender may change this"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{apperrors.ErrPostNotFound, http.StatusNotFound, "Post not found"},
	{apperrors.ErrCommentNotFound, http.StatusNotFound, "Comment not found"},
}

// Write response for error returned by a service
// Unknown errors are logged and answered with 500
func serviceError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		render.ServiceError(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			render.ServiceError(w, se.message, se.code)
			return
		}
	}

	l.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}

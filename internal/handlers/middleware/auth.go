package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
)

type authenticator interface {
	// Has to return user id or one of
	// apperrors.ErrTokenMissing, ErrTokenRevoked, ErrTokenExpired, ErrTokenInvalid
	Authenticate(ctx context.Context, access string) (uuid.UUID, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// AuthMiddleware lets request through only with valid access token in Authorization header
// Header carries raw token, no scheme
func AuthMiddleware(a authenticator, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")

			userID, err := a.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, apperrors.ErrTokenMissing):
					render.ServiceError(w, "Access token is missing", http.StatusUnauthorized)
				case errors.Is(err, apperrors.ErrTokenRevoked):
					render.ServiceError(w, "Token is invalidated", http.StatusUnauthorized)
				case errors.Is(err, apperrors.ErrTokenExpired):
					render.ServiceError(w, "Token is expired", http.StatusUnauthorized)
				case errors.Is(err, apperrors.ErrTokenInvalid):
					render.ServiceError(w, "Token is invalid", http.StatusForbidden)
				default:
					l.Error("can't authenticate request", "error", err)
					render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				}
				return
			}

			ctx := userctx.New(r.Context(), userctx.User{ID: userID, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

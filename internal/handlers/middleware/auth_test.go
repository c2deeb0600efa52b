package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
)

// Allow to use a function as authenticator
type authFunc func(ctx context.Context, access string) (uuid.UUID, error)

func (f authFunc) Authenticate(ctx context.Context, access string) (uuid.UUID, error) {
	return f(ctx, access)
}

type errorFunc func(string, ...any)

func (f errorFunc) Error(msg string, v ...any) { f(msg, v...) }

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	// Simple handler that writes user id and token from context
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must always be true cause middleware has to set user to context or write error to response
		user, ok := userctx.FromContext(r.Context())
		require.True(t, ok)

		_, err := fmt.Fprintf(w, "%s %s", user.ID, user.Token)
		require.NoError(t, err, "should write user to response")
	})

	t.Run("auth ok", func(t *testing.T) {
		var got string
		middleware := AuthMiddleware(authFunc(func(_ context.Context, access string) (uuid.UUID, error) {
			got = access
			return userID, nil
		}), errorFunc(func(string, ...any) {}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "raw-token")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", string(body))
		require.Equal(t, "raw-token", got, "header value is passed as is")
		require.Equal(t, userID.String()+" raw-token", string(body))
	})

	t.Run("auth fail", func(t *testing.T) {
		tests := []struct {
			err      error
			status   int
			message  string
			errorLog bool
		}{
			{apperrors.ErrTokenMissing, http.StatusUnauthorized, "Access token is missing", false},
			{apperrors.ErrTokenRevoked, http.StatusUnauthorized, "Token is invalidated", false},
			{fmt.Errorf("%w: exp", apperrors.ErrTokenExpired), http.StatusUnauthorized, "Token is expired", false},
			{fmt.Errorf("%w: sig", apperrors.ErrTokenInvalid), http.StatusForbidden, "Token is invalid", false},
			{errors.New("redis is down"), http.StatusInternalServerError, "Internal server error", true},
		}

		for _, tc := range tests {
			t.Run(tc.message, func(t *testing.T) {
				logged := false
				middleware := AuthMiddleware(authFunc(func(context.Context, string) (uuid.UUID, error) {
					return uuid.Nil, tc.err
				}), errorFunc(func(string, ...any) { logged = true }))

				srv := httptest.NewServer(middleware(handler))
				defer srv.Close()

				resp, err := http.Get(srv.URL + "/test")
				require.NoError(t, err, "should make request to test server")
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err, "should read response body")
				defer resp.Body.Close() // nolint:errcheck

				require.Equal(t, tc.status, resp.StatusCode)
				require.JSONEq(t, fmt.Sprintf(`{"error": "service_error", "message": %q}`, tc.message), string(body))
				require.Equal(t, tc.errorLog, logged)
			})
		}
	})
}

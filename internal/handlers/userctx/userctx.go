package userctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const userKey ctxKey = "user"

// Authenticated caller: user id and the access token the request came with
type User struct {
	ID    uuid.UUID
	Token string
}

// Create a new context with the user
func New(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Extract the user from the context
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

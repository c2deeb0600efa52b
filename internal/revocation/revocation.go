// Package revocation keeps access tokens invalidated before their natural expiry.
package revocation

import (
	"context"
	"time"
)

// Store is a set of revoked token strings
type Store interface {
	// Blacklist adds token to the set. Adding same token again is not an error.
	// expiresAt is the token own expiry: entries may be dropped after it. Zero means unknown.
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error

	IsBlacklisted(ctx context.Context, token string) (bool, error)

	// Clear empties the set
	Clear(ctx context.Context) error
}

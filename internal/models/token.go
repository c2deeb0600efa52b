package models

import (
	"time"

	"github.com/google/uuid"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued on login
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Verified token payload
type TokenClaims struct {
	ID        string
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

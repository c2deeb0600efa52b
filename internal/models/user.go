package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Hasher interface {
	Hash(raw string) (string, error)
	Check(raw, hashed string) bool
}

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string
	Email          string
	HashedPassword string

	// Refresh tokens issued to the user and not revoked yet, oldest first
	RefreshTokens []string
}

// SetPassword hashes raw password and stores the hash on the user.
// It is the only place the password turns into a hash, so call it before the user is persisted.
func (u *User) SetPassword(raw string, h Hasher) error {
	hash, err := h.Hash(raw)
	if err != nil {
		return err
	}
	u.HashedPassword = hash
	return nil
}

func (u *User) CheckPassword(raw string, h Hasher) bool {
	return h.Check(raw, u.HashedPassword)
}

// HasRefreshToken reports whether exactly this token is still in the list
func (u *User) HasRefreshToken(token string) bool {
	return token != "" && slices.Contains(u.RefreshTokens, token)
}

// Profile fields the user may change by themselves
// Nil means "leave as is"
type ProfileUpdate struct {
	Username *string
	Email    *string
}

package user

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt password hasher
// Password is prehashed with sha256 so bcrypt 72 bytes limit never truncates it
type BcryptHasher struct {
	// Zero means bcrypt.DefaultCost
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	return string(hash), err
}

// Check is constant time for the same cost
func (h BcryptHasher) Check(password string, hashedPassword string) bool {
	sum := sha256.Sum256([]byte(password))
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:]) == nil
}

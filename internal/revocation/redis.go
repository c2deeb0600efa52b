package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "revoked:"

	// Used when token expiry is unknown; no token lives longer than refresh TTL
	defaultTTL = 24 * time.Hour

	clearBatchSize = 100
)

// Redis store shares revoked tokens between processes
// Keys expire together with the tokens
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Store sha256 of the token instead of the token itself
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (s *Redis) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := defaultTTL
	if !expiresAt.IsZero() {
		ttl = max(time.Until(expiresAt), time.Second)
	}

	if err := s.rdb.Set(ctx, key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Redis) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := s.rdb.Get(ctx, key(token)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("redis get: %w", err)
	}
}

func (s *Redis) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", clearBatchSize).Iterator()

	batch := make([]string, 0, clearBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.rdb.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatchSize {
			if err := flush(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

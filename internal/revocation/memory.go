package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory store is correct for single process deployment only
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time // token -> expiry, zero if unknown
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Blacklist(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	m.entries[token] = expiresAt
	return nil
}

func (m *Memory) IsBlacklisted(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[token]
	return ok, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.entries)
	return nil
}

// Drop entries whose token expired already; caller holds the lock
func (m *Memory) prune() {
	now := m.now()
	for token, expiresAt := range m.entries {
		if !expiresAt.IsZero() && expiresAt.Before(now) {
			delete(m.entries, token)
		}
	}
}

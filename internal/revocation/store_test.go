package revocation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Behaviour every Store must have
func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("unknown token is not blacklisted", func(t *testing.T) {
		s := newStore(t)

		ok, err := s.IsBlacklisted(t.Context(), "token")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("blacklist is idempotent", func(t *testing.T) {
		s := newStore(t)
		expiresAt := time.Now().Add(15 * time.Minute)

		require.NoError(t, s.Blacklist(t.Context(), "token", expiresAt))
		require.NoError(t, s.Blacklist(t.Context(), "token", expiresAt), "second blacklist should not fail")

		ok, err := s.IsBlacklisted(t.Context(), "token")
		require.NoError(t, err)
		assert.True(t, ok, "token should stay blacklisted")

		ok, err = s.IsBlacklisted(t.Context(), "other-token")
		require.NoError(t, err)
		assert.False(t, ok, "only exact token is blacklisted")
	})

	t.Run("unknown expiry", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Blacklist(t.Context(), "token", time.Time{}))

		ok, err := s.IsBlacklisted(t.Context(), "token")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		s := newStore(t)
		for _, token := range []string{"a", "b", "c"} {
			require.NoError(t, s.Blacklist(t.Context(), token, time.Now().Add(time.Hour)))
		}

		require.NoError(t, s.Clear(t.Context()))

		for _, token := range []string{"a", "b", "c"} {
			ok, err := s.IsBlacklisted(t.Context(), token)
			require.NoError(t, err)
			assert.False(t, ok, "clear should drop %q", token)
		}
	})

	t.Run("concurrent use", func(t *testing.T) {
		s := newStore(t)
		tokens := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}

		var wg sync.WaitGroup
		for _, token := range tokens {
			wg.Add(2)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Blacklist(t.Context(), token, time.Now().Add(time.Hour)))
			}()
			go func() {
				defer wg.Done()
				_, err := s.IsBlacklisted(t.Context(), token)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		for _, token := range tokens {
			ok, err := s.IsBlacklisted(t.Context(), token)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})
}

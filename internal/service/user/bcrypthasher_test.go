package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: bcrypt.MinCost}

	t.Run("hash password", func(t *testing.T) {
		got, err := h.Hash("password")
		require.NoError(t, err)

		require.Len(t, got, 60, "bcrypt length is 60 letters as far as i know")
		require.Equal(t, "$2a$", got[:4], "bcrypt has should have prefix '$2a$'")
		require.NotContains(t, got, "password")
	})

	t.Run("default cost", func(t *testing.T) {
		got, err := BcryptHasher{}.Hash("password")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(got))
		require.NoError(t, err)
		require.Equal(t, bcrypt.DefaultCost, cost)
	})

	t.Run("check password ok", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		require.True(t, h.Check("password", hash))
	})

	t.Run("fail check if wrong password", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		require.False(t, h.Check("wrong", hash))
	})

	t.Run("long passwords are not truncated", func(t *testing.T) {
		long := strings.Repeat("a", 100)
		hash, err := h.Hash(long + "1")
		require.NoError(t, err)

		require.False(t, h.Check(long+"2", hash), "difference after 72 bytes must matter")
	})

	t.Run("garbage hash", func(t *testing.T) {
		require.False(t, h.Check("password", "not-a-hash"))
	})
}

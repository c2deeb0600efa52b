package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/repository/sqlite"
)

// Open SQLite storage in test temp dir
// Closed and removed when test ends, no docker required
func NewSQLiteStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	s, err := sqlite.New(t.Context(), filepath.Join(t.TempDir(), "blogapi.db"))
	require.NoError(t, err, "Error happened when opening sqlite storage")
	t.Cleanup(func() { _ = s.Close() })

	return s
}

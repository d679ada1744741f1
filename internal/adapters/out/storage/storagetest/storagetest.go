// Package storagetest opens throwaway storage managers for tests.
package storagetest

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"logistics/internal/adapters/out/storage"

	"github.com/stretchr/testify/require"
)

// DiscardLogger drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSQLite connects a manager to a fresh SQLite file under t.TempDir and
// creates the schema. The manager is closed when the test ends.
func NewSQLite(t testing.TB) *storage.Manager {
	t.Helper()

	m := storage.NewManager(storage.Config{
		FallbackPath: filepath.Join(t.TempDir(), "logistics.db"),
	}, DiscardLogger())

	require.NoError(t, m.Connect(t.Context()))
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.EnsureSchema(t.Context()))
	return m
}

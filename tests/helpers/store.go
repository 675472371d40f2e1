package helpers

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ShotaHirabayashi/coachcanvas/internal/repository"
)

// NewTestSQLiteStore opens an isolated in-memory store.
func NewTestSQLiteStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", opts...)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestFileStore opens a store on a temporary file with WAL and immediate
// transactions, for tests that need several connections.
func NewTestFileStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coachcanvas.db")
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
	s, err := store.NewSQLiteStore(dsn, opts...)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

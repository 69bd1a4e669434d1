// Package testutil provides shared test helpers for setting up stores and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bryanpdl/briefly/internal/draft"
	"github.com/bryanpdl/briefly/internal/publication"
)

// TestDB creates a temporary publication database that is automatically cleaned up.
func TestDB(t *testing.T) *publication.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "briefly-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := publication.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDrafts creates a temporary file-backed draft store.
func TestDrafts(t *testing.T) (string, *draft.FS) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "drafts")
	store, err := draft.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

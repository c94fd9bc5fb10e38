// Package testutil provides shared helpers for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/eckolabs/ecko/internal/store"
)

// TestStore opens a SQLite store backed by a per-test temporary file and
// closes it when the test finishes.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ecko.db")
	st, err := store.Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close test store: %v", err)
		}
	})
	return st
}

// NewSession creates a session and returns its id.
func NewSession(t *testing.T, st store.Store) string {
	t.Helper()

	id, err := st.CreateSession()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return id
}

package testsupport

import (
	"context"
	"testing"

	"lens/internal/blob"
	"lens/internal/config"
	"lens/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// CreateBlob inserts a blob record in the initial state for tests.
func CreateBlob(t testing.TB, st *store.Store, id string) *blob.Record {
	t.Helper()

	record, err := st.Create(context.Background(), id, "https://example.com/cb")
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return record
}

// AdvanceBlob transitions a blob record to the given status for tests,
// walking through IN_PROGRESS when required.
func AdvanceBlob(t testing.TB, st *store.Store, id string, target blob.Status) *blob.Record {
	t.Helper()

	ctx := context.Background()
	if target != blob.StatusInProgress && target != blob.StatusUploadTimedOut {
		if _, err := st.UpdateStatus(ctx, id, blob.StatusInProgress); err != nil {
			t.Fatalf("advance to IN_PROGRESS: %v", err)
		}
	}
	record, err := st.UpdateStatus(ctx, id, target)
	if err != nil {
		t.Fatalf("advance to %s: %v", target, err)
	}
	return record
}

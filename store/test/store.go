package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hrygo/akasha/internal/profile"
	"github.com/hrygo/akasha/store"
	"github.com/hrygo/akasha/store/db"
)

// NewTestingStore creates a migrated store on a fresh sqlite database under
// the test's temp dir. Each test gets its own database file so tests can run
// in parallel.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := NewTestingProfile(t)
	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return ts
}

// NewTestingProfile returns a profile with spec-default archive tuning and a
// sqlite DSN under the test's temp dir.
func NewTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()

	dir := t.TempDir()
	return &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "akasha_test.db"),

		ArchiveChunkSize:      1000,
		ArchiveChunkOverlap:   500,
		ArchiveScoreThreshold: 0.45,
		ArchiveMaxFiles:       5,
		ArchiveRecallLimit:    20,
	}
}

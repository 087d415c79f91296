package store

import (
	"context"

	"github.com/hrygo/akasha/internal/profile"
)

// Store provides database access to all raw objects.
//
// The archive is a single-process, effectively single-writer workload: the
// conversation loop and the ingestion pipeline are the only writers, and they
// are serialized by the driver's native transaction semantics. No additional
// locking is layered on top. A multi-writer deployment would need an explicit
// serialization discipline in front of this type.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateMemoryRecord(ctx context.Context, create *MemoryRecord) (*MemoryRecord, error) {
	return s.driver.CreateMemoryRecord(ctx, create)
}

func (s *Store) ListMemoryRecords(ctx context.Context, find *FindMemoryRecord) ([]*MemoryRecord, error) {
	return s.driver.ListMemoryRecords(ctx, find)
}

func (s *Store) CreateFileRecord(ctx context.Context, create *FileRecord) (*FileRecord, error) {
	return s.driver.CreateFileRecord(ctx, create)
}

func (s *Store) ListFileRecords(ctx context.Context, find *FindFileRecord) ([]*FileRecord, error) {
	return s.driver.ListFileRecords(ctx, find)
}

func (s *Store) DeleteFileRecord(ctx context.Context, id string) error {
	return s.driver.DeleteFileRecord(ctx, id)
}

func (s *Store) DeleteAll(ctx context.Context) error {
	return s.driver.DeleteAll(ctx)
}

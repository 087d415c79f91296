package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Migrate(ctx context.Context) error

	// MemoryRecord model related methods.
	CreateMemoryRecord(ctx context.Context, create *MemoryRecord) (*MemoryRecord, error)
	ListMemoryRecords(ctx context.Context, find *FindMemoryRecord) ([]*MemoryRecord, error)

	// FileRecord model related methods.
	CreateFileRecord(ctx context.Context, create *FileRecord) (*FileRecord, error)
	ListFileRecords(ctx context.Context, find *FindFileRecord) ([]*FileRecord, error)

	// DeleteFileRecord deletes a file record and cascades to every memory
	// record whose file_id matches, in a single transaction.
	DeleteFileRecord(ctx context.Context, id string) error

	// DeleteAll wipes both collections (used on "clear memory").
	DeleteAll(ctx context.Context) error
}

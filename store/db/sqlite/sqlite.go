package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/akasha/internal/profile"
	"github.com/hrygo/akasha/store"
)

// ============================================================================
// SQLITE SUPPORT (Default - Local Archives)
// ============================================================================
// SQLite is the default database for local, single-user archives.
//
// Embeddings are stored as JSON blobs and similarity is computed in Go by a
// full scan (see server/ai). This is an explicit design decision: personal
// archives are bounded to a handful of files and at most thousands of chunks,
// so a vector index buys nothing here. PostgreSQL with pgvector is available
// for anything larger.
// ============================================================================

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// Connect with some sane settings: WAL journal and a busy timeout so the
	// detached memory-writer goroutines never trip over the main loop.
	dsn := profile.DSN + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// currentSchemaVersion is the schema the driver migrates to.
// Version 1 created the two collections; version 2 added the file_id index
// used for cascade deletes.
const currentSchemaVersion = 2

var migrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS memory_record (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding TEXT NOT NULL,
			created_ts BIGINT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			file_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS file_record (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			size INTEGER NOT NULL,
			created_ts BIGINT NOT NULL,
			token_count INTEGER NOT NULL
		)`,
	},
	2: {
		`CREATE INDEX IF NOT EXISTS idx_memory_record_file_id ON memory_record (file_id)`,
	},
}

// Migrate applies incremental schema migrations up to currentSchemaVersion.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	var version int
	err := d.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "failed to read schema version")
	}
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := d.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return errors.Wrap(err, "failed to seed schema version")
		}
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		for _, stmt := range migrations[v] {
			if _, err := d.db.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "failed to apply migration %d", v)
			}
		}
		if _, err := d.db.ExecContext(ctx, `UPDATE schema_version SET version = `+placeholder(1), v); err != nil {
			return errors.Wrapf(err, "failed to record schema version %d", v)
		}
		slog.Info("applied schema migration", "version", v)
	}

	return nil
}

// placeholder returns a placeholder for SQLite (uses ?).
func placeholder(n int) string {
	return "?"
}

// placeholders returns n placeholders for SQLite.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/akasha/internal/profile"
	"github.com/hrygo/akasha/store"
)

// ============================================================================
// POSTGRESQL SUPPORT (Optional - Larger Archives)
// ============================================================================
// PostgreSQL stores embeddings in native pgvector columns. The recall path
// still scans and scores in Go behind the same Driver contract, but an
// installation outgrowing the full-scan design can move scoring into
// `ORDER BY embedding <=> $1` without touching callers.
// ============================================================================

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// Single-user personal archive: keep the pool small.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

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

const currentSchemaVersion = 2

var migrations = map[int][]string{
	1: {
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS memory_record (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector NOT NULL,
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

// placeholder returns a placeholder for PostgreSQL (uses $1, $2, ...).
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n placeholders for PostgreSQL.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/akasha/store"
)

func (d *DB) CreateFileRecord(ctx context.Context, create *store.FileRecord) (*store.FileRecord, error) {
	stmt := `
		INSERT INTO file_record (id, name, size, created_ts, token_count)
		VALUES (` + placeholders(5) + `)
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Name,
		create.Size,
		create.CreatedTs,
		create.TokenCount,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create file record")
	}

	return create, nil
}

func (d *DB) ListFileRecords(ctx context.Context, find *store.FindFileRecord) ([]*store.FileRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}

	query := `
		SELECT id, name, size, created_ts, token_count
		FROM file_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list file records")
	}
	defer rows.Close()

	list := []*store.FileRecord{}
	for rows.Next() {
		var record store.FileRecord
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.Size,
			&record.CreatedTs,
			&record.TokenCount,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan file record")
		}
		list = append(list, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteFileRecord deletes a file record and all memory records referencing it.
// Both deletes run in one transaction so a crash can never leave orphaned
// document chunks behind.
func (d *DB) DeleteFileRecord(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_record WHERE id = `+placeholder(1), id); err != nil {
		return errors.Wrap(err, "failed to delete file record")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memory_record WHERE file_id = `+placeholder(1), id); err != nil {
		return errors.Wrap(err, "failed to delete memory records of file")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (d *DB) DeleteAll(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM memory_record`); err != nil {
		return errors.Wrap(err, "failed to clear memory records")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM file_record`); err != nil {
		return errors.Wrap(err, "failed to clear file records")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

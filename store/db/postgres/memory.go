package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/akasha/store"
)

func (d *DB) CreateMemoryRecord(ctx context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	stmt := `
		INSERT INTO memory_record (id, content, embedding, created_ts, kind, source, file_id)
		VALUES (` + placeholders(7) + `)
	`
	vector := pgvector.NewVector(create.Embedding)
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Content,
		vector,
		create.CreatedTs,
		string(create.Kind),
		create.Source,
		create.FileID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create memory record")
	}

	return create, nil
}

func (d *DB) ListMemoryRecords(ctx context.Context, find *store.FindMemoryRecord) ([]*store.MemoryRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.FileID != nil {
		where, args = append(where, "file_id = "+placeholder(len(args)+1)), append(args, *find.FileID)
	}
	if find.Kind != nil {
		where, args = append(where, "kind = "+placeholder(len(args)+1)), append(args, string(*find.Kind))
	}

	query := `
		SELECT id, content, embedding, created_ts, kind, source, file_id
		FROM memory_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memory records")
	}
	defer rows.Close()

	list := []*store.MemoryRecord{}
	for rows.Next() {
		var record store.MemoryRecord
		var vector pgvector.Vector
		var kind string
		if err := rows.Scan(
			&record.ID,
			&record.Content,
			&vector,
			&record.CreatedTs,
			&kind,
			&record.Source,
			&record.FileID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory record")
		}
		record.Embedding = vector.Slice()
		record.Kind = store.MemoryKind(kind)
		list = append(list, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

package sqlite

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/akasha/store"
)

func (d *DB) CreateMemoryRecord(ctx context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	embedding, err := json.Marshal(create.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal embedding")
	}

	stmt := `
		INSERT INTO memory_record (id, content, embedding, created_ts, kind, source, file_id)
		VALUES (` + placeholders(7) + `)
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Content,
		string(embedding),
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
		var embedding, kind string
		if err := rows.Scan(
			&record.ID,
			&record.Content,
			&embedding,
			&record.CreatedTs,
			&kind,
			&record.Source,
			&record.FileID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory record")
		}
		if err := json.Unmarshal([]byte(embedding), &record.Embedding); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal embedding")
		}
		record.Kind = store.MemoryKind(kind)
		list = append(list, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

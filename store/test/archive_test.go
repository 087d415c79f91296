package test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/akasha/store"
)

func TestMemoryRecordStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateMemoryRecord(ctx, &store.MemoryRecord{
		ID:        uuid.NewString(),
		Content:   "I prefer tea over coffee",
		Embedding: []float32{0.1, 0.2, 0.3},
		CreatedTs: time.Now().UnixMilli(),
		Kind:      store.MemoryKindUserInput,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, created.Content, records[0].Content)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, records[0].Embedding)
	require.Equal(t, store.MemoryKindUserInput, records[0].Kind)
}

func TestListMemoryRecordsByKind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for _, kind := range []store.MemoryKind{store.MemoryKindUserInput, store.MemoryKindAgentReflection, store.MemoryKindDocument} {
		_, err := ts.CreateMemoryRecord(ctx, &store.MemoryRecord{
			ID:        uuid.NewString(),
			Content:   "content for " + string(kind),
			Embedding: []float32{1},
			CreatedTs: time.Now().UnixMilli(),
			Kind:      kind,
		})
		require.NoError(t, err)
	}

	kind := store.MemoryKindDocument
	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, store.MemoryKindDocument, records[0].Kind)
}

func TestDeleteFileRecordCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	file, err := ts.CreateFileRecord(ctx, &store.FileRecord{
		ID:         "file-a",
		Name:       "notes.txt",
		Size:       1200,
		CreatedTs:  time.Now().UnixMilli(),
		TokenCount: 315,
	})
	require.NoError(t, err)

	// Two chunks belong to the file, one memory does not.
	for i := 0; i < 2; i++ {
		_, err := ts.CreateMemoryRecord(ctx, &store.MemoryRecord{
			ID:        uuid.NewString(),
			Content:   "chunk",
			Embedding: []float32{0.5},
			CreatedTs: time.Now().UnixMilli(),
			Kind:      store.MemoryKindDocument,
			Source:    file.Name,
			FileID:    file.ID,
		})
		require.NoError(t, err)
	}
	unrelated, err := ts.CreateMemoryRecord(ctx, &store.MemoryRecord{
		ID:        uuid.NewString(),
		Content:   "unrelated conversation memory",
		Embedding: []float32{0.5},
		CreatedTs: time.Now().UnixMilli(),
		Kind:      store.MemoryKindUserInput,
	})
	require.NoError(t, err)

	require.NoError(t, ts.DeleteFileRecord(ctx, file.ID))

	files, err := ts.ListFileRecords(ctx, &store.FindFileRecord{})
	require.NoError(t, err)
	require.Empty(t, files)

	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, unrelated.ID, records[0].ID)
}

func TestDeleteAllWipesBothCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.CreateFileRecord(ctx, &store.FileRecord{
		ID:         "file-b",
		Name:       "doc.md",
		Size:       10,
		CreatedTs:  time.Now().UnixMilli(),
		TokenCount: 3,
	})
	require.NoError(t, err)
	_, err = ts.CreateMemoryRecord(ctx, &store.MemoryRecord{
		ID:        uuid.NewString(),
		Content:   "something",
		Embedding: []float32{1, 2},
		CreatedTs: time.Now().UnixMilli(),
		Kind:      store.MemoryKindFact,
	})
	require.NoError(t, err)

	require.NoError(t, ts.DeleteAll(ctx))

	files, err := ts.ListFileRecords(ctx, &store.FindFileRecord{})
	require.NoError(t, err)
	require.Empty(t, files)
	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestListMemoryRecordsOrderedByCreation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	base := time.Now().UnixMilli()
	for i := 0; i < 3; i++ {
		_, err := ts.CreateMemoryRecord(ctx, &store.MemoryRecord{
			ID:        uuid.NewString(),
			Content:   string(rune('a' + i)),
			Embedding: []float32{1},
			CreatedTs: base + int64(i),
			Kind:      store.MemoryKindFact,
		})
		require.NoError(t, err)
	}

	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "a", records[0].Content)
	require.Equal(t, "c", records[2].Content)
}

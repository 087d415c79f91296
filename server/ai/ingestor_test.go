package ai

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/akasha/store"
	storetest "github.com/hrygo/akasha/store/test"
)

func TestIngestSplitsAndPersistsChunks(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	p := storetest.NewTestingProfile(t)

	embedder := newFakeEmbedder()
	embedder.fallback = []float32{0.1, 0.2}

	text := strings.Repeat("x", 3000)
	file, err := NewIngestor(ts, embedder, p).Ingest(ctx, text, "notes.txt", nil)
	require.NoError(t, err)
	require.Equal(t, "notes.txt", file.Name)
	require.Equal(t, 3000, file.Size)
	require.Equal(t, 790, file.TokenCount) // ceil(3000 / 3.8)

	kind := store.MemoryKindDocument
	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, records, 5) // windows at 0, 500, 1000, 1500, 2000
	for _, r := range records {
		require.Equal(t, "notes.txt", r.Source)
		require.Equal(t, file.ID, r.FileID)
		require.Equal(t, []float32{0.1, 0.2}, r.Embedding)
	}
}

func TestIngestRejectsEmptyDocument(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	p := storetest.NewTestingProfile(t)

	_, err := NewIngestor(ts, newFakeEmbedder(), p).Ingest(ctx, "   \n\t ", "empty.txt", nil)
	require.Error(t, err)
}

func TestIngestEnforcesFileQuota(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	p := storetest.NewTestingProfile(t)
	p.ArchiveMaxFiles = 2

	embedder := newFakeEmbedder()
	embedder.fallback = []float32{1}
	ingestor := NewIngestor(ts, embedder, p)

	for i := 0; i < 2; i++ {
		_, err := ingestor.Ingest(ctx, "some document text", fmt.Sprintf("doc-%d.txt", i), nil)
		require.NoError(t, err)
	}

	_, err := ingestor.Ingest(ctx, "one too many", "overflow.txt", nil)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// The rejected ingest must leave no trace.
	files, err := ts.ListFileRecords(ctx, &store.FindFileRecord{})
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestIngestReportsMonotonicProgress(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	p := storetest.NewTestingProfile(t)
	p.ArchiveChunkSize = 10
	p.ArchiveChunkOverlap = 5

	embedder := newFakeEmbedder()
	embedder.fallback = []float32{1}

	var progress []IngestionProgress
	text := strings.Repeat("y", 100) // 19 chunks at stride 5
	_, err := NewIngestor(ts, embedder, p).Ingest(ctx, text, "tiny.txt", func(pr IngestionProgress) {
		progress = append(progress, pr)
	})
	require.NoError(t, err)
	require.NotEmpty(t, progress)

	for i := 1; i < len(progress); i++ {
		require.Greater(t, progress[i].Percent, progress[i-1].Percent)
		require.Greater(t, progress[i].CurrentChunk, progress[i-1].CurrentChunk)
	}
	final := progress[len(progress)-1]
	require.InDelta(t, 100.0, final.Percent, 1e-9)
	require.Equal(t, final.TotalChunks, final.CurrentChunk)
}

func TestIngestSkipsChunksThatFailToEmbed(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	p := storetest.NewTestingProfile(t)
	p.ArchiveChunkSize = 10
	p.ArchiveChunkOverlap = 5

	embedder := newFakeEmbedder()
	embedder.fallback = []float32{1}
	embedder.failOn["aaaaabbbbb"] = true

	text := "aaaaabbbbbcccccddddd"
	file, err := NewIngestor(ts, embedder, p).Ingest(ctx, text, "partial.txt", nil)
	require.NoError(t, err)

	records, err := ts.ListMemoryRecords(ctx, &store.FindMemoryRecord{FileID: &file.ID})
	require.NoError(t, err)
	for _, r := range records {
		require.NotEqual(t, "aaaaabbbbb", r.Content)
	}
	require.NotEmpty(t, records)
}

func TestIngestPacesBatches(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	p := storetest.NewTestingProfile(t)
	p.ArchiveChunkSize = 10
	p.ArchiveChunkOverlap = 5

	embedder := newFakeEmbedder()
	embedder.fallback = []float32{1}

	// 19 chunks means 4 batches of up to 5, so at least 3 paced waits.
	text := strings.Repeat("z", 100)
	start := time.Now()
	_, err := NewIngestor(ts, embedder, p).Ingest(ctx, text, "paced.txt", nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 3*20*time.Millisecond)
}

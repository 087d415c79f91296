package ai

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hrygo/akasha/internal/profile"
	pluginai "github.com/hrygo/akasha/plugin/ai"
	"github.com/hrygo/akasha/plugin/ai/timeout"
	"github.com/hrygo/akasha/store"
)

// ErrQuotaExceeded is returned when the archive already holds the maximum
// number of ingested files. It is never retried; the user has to remove an
// archive first.
var ErrQuotaExceeded = errors.New("archive slots exhausted: remove an archive before ingesting another")

// embedBatchSize bounds how many chunks are embedded between progress
// reports. Chunks within a batch are embedded sequentially, not in parallel,
// to bound concurrent key usage against the provider.
const embedBatchSize = 5

// tokensPerChar approximates token count from character length.
const tokensPerChar = 1.0 / 3.8

// IngestionProgress is reported after each embedded batch.
type IngestionProgress struct {
	Percent      float64 `json:"percent"`
	CurrentChunk int     `json:"currentChunk"`
	TotalChunks  int     `json:"totalChunks"`
}

// ProgressFunc receives ingestion progress updates.
type ProgressFunc func(p IngestionProgress)

// Ingestor splits documents into overlapping chunks, embeds them in batches
// and persists them with provenance.
type Ingestor struct {
	store    *store.Store
	embedder pluginai.EmbeddingService

	chunkSize    int
	chunkOverlap int
	maxFiles     int

	// limiter paces embedding batches so the provider is not overwhelmed.
	limiter *rate.Limiter
}

// NewIngestor creates a new Ingestor.
func NewIngestor(s *store.Store, embedder pluginai.EmbeddingService, p *profile.Profile) *Ingestor {
	return &Ingestor{
		store:        s,
		embedder:     embedder,
		chunkSize:    p.ArchiveChunkSize,
		chunkOverlap: p.ArchiveChunkOverlap,
		maxFiles:     p.ArchiveMaxFiles,
		limiter:      rate.NewLimiter(rate.Every(timeout.IngestBatchInterval), 1),
	}
}

// Ingest chunks, embeds and persists a document, then records its file
// metadata. The FileRecord is written last: a crash mid-ingestion leaves
// unreferenced chunks at worst, never a file claiming chunks that are absent.
func (in *Ingestor) Ingest(ctx context.Context, text, filename string, onProgress ProgressFunc) (*store.FileRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("document is empty")
	}

	files, err := in.store.ListFileRecords(ctx, &store.FindFileRecord{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list file records")
	}
	if len(files) >= in.maxFiles {
		return nil, ErrQuotaExceeded
	}

	file := &store.FileRecord{
		ID:         shortuuid.New(),
		Name:       filename,
		Size:       len(text),
		CreatedTs:  time.Now().UnixMilli(),
		TokenCount: int(math.Ceil(float64(len(text)) * tokensPerChar)),
	}

	chunks := Chunk(text, in.chunkSize, in.chunkOverlap)
	totalChunks := len(chunks)
	persisted := 0

	for i := 0; i < totalChunks; i += embedBatchSize {
		if err := in.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := i + embedBatchSize
		if end > totalChunks {
			end = totalChunks
		}

		for _, content := range chunks[i:end] {
			embedding, err := in.embedder.Embed(ctx, content)
			if err != nil {
				// A chunk that fails to embed is skipped, not fatal.
				slog.Warn("failed to embed chunk, skipping", "file", filename, "error", err)
				continue
			}
			if _, err := in.store.CreateMemoryRecord(ctx, &store.MemoryRecord{
				ID:        uuid.New().String(),
				Content:   content,
				Embedding: embedding,
				CreatedTs: time.Now().UnixMilli(),
				Kind:      store.MemoryKindDocument,
				Source:    filename,
				FileID:    file.ID,
			}); err != nil {
				return nil, errors.Wrap(err, "failed to persist document chunk")
			}
			persisted++
		}

		if onProgress != nil {
			onProgress(IngestionProgress{
				Percent:      float64(end) / float64(totalChunks) * 100,
				CurrentChunk: end,
				TotalChunks:  totalChunks,
			})
		}
	}

	if _, err := in.store.CreateFileRecord(ctx, file); err != nil {
		return nil, errors.Wrap(err, "failed to persist file record")
	}

	slog.Info("document ingested",
		"file", filename,
		"size", file.Size,
		"token_count", file.TokenCount,
		"chunks", totalChunks,
		"persisted", persisted)

	return file, nil
}

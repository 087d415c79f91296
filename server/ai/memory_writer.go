package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	pluginai "github.com/hrygo/akasha/plugin/ai"
	"github.com/hrygo/akasha/store"
)

// Writer records conversation turns back into the archive.
//
// Every write is fire-and-forget: the conversation loop must never block on
// or fail because of memory persistence, so all errors are swallowed here.
type Writer struct {
	store    *store.Store
	embedder pluginai.EmbeddingService

	// OnAttempt, when set, observes every write attempt. It exists so tests
	// can verify that detached writes happened without making them blocking.
	OnAttempt func(text string, kind store.MemoryKind)
}

// NewWriter creates a new memory Writer.
func NewWriter(s *store.Store, embedder pluginai.EmbeddingService) *Writer {
	return &Writer{
		store:    s,
		embedder: embedder,
	}
}

// Remember embeds and persists one memory record. Empty text and embedding
// failures silently no-op.
func (w *Writer) Remember(ctx context.Context, text string, kind store.MemoryKind, source, fileID string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if w.OnAttempt != nil {
		w.OnAttempt(text, kind)
	}

	embedding, err := w.embedder.Embed(ctx, text)
	if err != nil || len(embedding) == 0 {
		slog.Debug("memory write skipped, embedding unavailable", "kind", kind, "error", err)
		return
	}

	if _, err := w.store.CreateMemoryRecord(ctx, &store.MemoryRecord{
		ID:        uuid.New().String(),
		Content:   text,
		Embedding: embedding,
		CreatedTs: time.Now().UnixMilli(),
		Kind:      kind,
		Source:    source,
		FileID:    fileID,
	}); err != nil {
		slog.Debug("memory write failed", "kind", kind, "error", err)
	}
}

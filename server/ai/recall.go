package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/hrygo/akasha/internal/profile"
	pluginai "github.com/hrygo/akasha/plugin/ai"
	"github.com/hrygo/akasha/store"
)

// DefaultRecallLimit is the maximum number of fragments returned per query.
const DefaultRecallLimit = 20

// Recaller performs similarity search over the archive.
//
// Scoring is a full O(N) cosine scan over every stored record. That is a
// deliberate design decision, not an oversight: the archive is bounded to a
// handful of files and at most thousands of chunks, where a linear scan beats
// the operational cost of an ANN index. An installation targeting larger
// corpora should substitute an index behind this same contract.
type Recaller struct {
	store    *store.Store
	embedder pluginai.EmbeddingService

	threshold    float64
	defaultLimit int
}

// NewRecaller creates a new Recaller.
func NewRecaller(s *store.Store, embedder pluginai.EmbeddingService, p *profile.Profile) *Recaller {
	defaultLimit := p.ArchiveRecallLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultRecallLimit
	}
	return &Recaller{
		store:        s,
		embedder:     embedder,
		threshold:    p.ArchiveScoreThreshold,
		defaultLimit: defaultLimit,
	}
}

// Recall embeds the query, scores every stored record by cosine similarity,
// and returns the top fragments above the score threshold, formatted for
// prompt injection. It never returns an error: any failure degrades to an
// empty result so the conversation continues without context.
func (r *Recaller) Recall(ctx context.Context, query string, limit int) []string {
	if limit <= 0 {
		limit = r.defaultLimit
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("recall embedding failed, returning no context", "error", err)
		return nil
	}

	records, err := r.store.ListMemoryRecords(ctx, &store.FindMemoryRecord{})
	if err != nil {
		slog.Warn("recall scan failed, returning no context", "error", err)
		return nil
	}

	type scored struct {
		content string
		score   float64
	}
	matches := []scored{}
	for _, record := range records {
		score := CosineSimilarity(queryVector, record.Embedding)
		if score <= r.threshold {
			continue
		}
		source := record.Source
		if source == "" {
			source = "Archive"
		}
		matches = append(matches, scored{
			content: fmt.Sprintf("[DATA SOURCE: %s] %s", source, record.Content),
			score:   score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.content)
	}
	return results
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched dimensions or zero-magnitude vectors score 0, which the recall
// threshold naturally excludes.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

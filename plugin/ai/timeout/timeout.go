// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

const (
	// DraftTimeout is the overall timeout for drafting and synthesis streams.
	DraftTimeout = 120 * time.Second

	// CritiqueTimeout is the overall timeout for the critique stream.
	CritiqueTimeout = 90 * time.Second

	// InactivityTimeout aborts a stream that delivers no bytes for this long.
	// It is distinct from the overall timeouts above and is reported as a
	// stream timeout.
	InactivityTimeout = 30 * time.Second

	// EmbeddingTimeout is the timeout for a single embedding request.
	EmbeddingTimeout = 30 * time.Second

	// KeyRotationBackoff separates successive key attempts in the fallback pool.
	KeyRotationBackoff = 100 * time.Millisecond

	// IngestBatchInterval paces embedding batches during document ingestion so
	// the provider is not hammered.
	IngestBatchInterval = 20 * time.Millisecond
)

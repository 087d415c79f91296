package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrNoAPIKeys is returned when the fallback pool is empty.
	ErrNoAPIKeys = errors.New("no API keys available")

	// ErrAllKeysFailed is returned when every key in the pool has failed.
	ErrAllKeysFailed = errors.New("all API keys failed")

	// ErrStreamTimeout is returned when a stream delivers no data within the
	// inactivity window. It is deliberately distinct from the overall call
	// timeout so callers can tell a stalled stream from a slow one.
	ErrStreamTimeout = errors.New("stream timeout: no data received")
)

// IsTimeout reports whether err is a timeout of any flavor: the overall call
// deadline, the stream inactivity window, or a provider-reported timeout.
// Timeouts fail fast and are never retried on another key.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrStreamTimeout) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsAuth reports whether err is an authentication failure (401/invalid key).
// Auth errors still rotate to the next key, but produce a specific
// user-facing message when they are the terminal failure.
func IsAuth(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 401
	}
	msg := err.Error()
	return strings.Contains(msg, "401") || strings.Contains(msg, "Unauthorized")
}

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/akasha/plugin/ai/timeout"
)

type fallbackOptions struct {
	failFastOnTimeout bool
}

// FallbackOption configures key rotation behavior.
type FallbackOption func(*fallbackOptions)

// FailFastOnTimeout aborts rotation as soon as a timeout-classified error is
// seen, instead of advancing to the next key. The completion path uses this: a
// provider that timed out on one key will time out on the next, and burning
// the rest of the pool just leaves the user staring at a frozen stream.
func FailFastOnTimeout() FallbackOption {
	return func(o *fallbackOptions) {
		o.failFastOnTimeout = true
	}
}

// TryKeysInOrder runs op against each key in order until one succeeds.
//
// It is a pure function of its arguments: no key index survives between
// calls, so two concurrent turns can never race on rotation state. The index
// of the key that succeeded is returned as advisory information only.
//
// Rotation rules:
//   - a failure advances to the next key after a short backoff,
//   - no key is retried within the same call,
//   - with FailFastOnTimeout, a timeout-classified failure aborts immediately.
func TryKeysInOrder[T any](ctx context.Context, keys []string, op func(ctx context.Context, key string) (T, error), opts ...FallbackOption) (T, int, error) {
	var options fallbackOptions
	for _, opt := range opts {
		opt(&options)
	}

	var zero T
	if len(keys) == 0 {
		return zero, -1, ErrNoAPIKeys
	}

	var lastErr error
	for i, key := range keys {
		result, err := op(ctx, key)
		if err == nil {
			return result, i, nil
		}
		lastErr = err

		if options.failFastOnTimeout && IsTimeout(err) {
			return zero, i, err
		}

		slog.Warn("API key attempt failed, rotating", "key_index", i, "error", err)
		if i < len(keys)-1 {
			select {
			case <-time.After(timeout.KeyRotationBackoff):
			case <-ctx.Done():
				return zero, i, ctx.Err()
			}
		}
	}

	return zero, len(keys) - 1, fmt.Errorf("%w: %w", ErrAllKeysFailed, lastErr)
}

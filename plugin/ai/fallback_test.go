package ai

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestTryKeysInOrderEmptyPool(t *testing.T) {
	_, idx, err := TryKeysInOrder(context.Background(), nil, func(context.Context, string) (string, error) {
		t.Fatal("op should not be called with an empty pool")
		return "", nil
	})
	require.ErrorIs(t, err, ErrNoAPIKeys)
	require.Equal(t, -1, idx)
}

func TestTryKeysInOrderFirstKeySucceeds(t *testing.T) {
	var attempts []string
	result, idx, err := TryKeysInOrder(context.Background(), []string{"k1", "k2"}, func(_ context.Context, key string) (string, error) {
		attempts = append(attempts, key)
		return "ok:" + key, nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok:k1", result)
	require.Equal(t, 0, idx)
	require.Equal(t, []string{"k1"}, attempts)
}

func TestTryKeysInOrderRotatesPastFailures(t *testing.T) {
	var attempts []string
	result, idx, err := TryKeysInOrder(context.Background(), []string{"k1", "k2", "k3"}, func(_ context.Context, key string) (string, error) {
		attempts = append(attempts, key)
		if key != "k3" {
			return "", errors.New("429 capacity exceeded")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 2, idx)
	require.Equal(t, []string{"k1", "k2", "k3"}, attempts)
}

func TestTryKeysInOrderExhaustion(t *testing.T) {
	opErr := errors.New("invalid request")
	_, idx, err := TryKeysInOrder(context.Background(), []string{"k1", "k2"}, func(context.Context, string) (int, error) {
		return 0, opErr
	})
	require.ErrorIs(t, err, ErrAllKeysFailed)
	require.ErrorIs(t, err, opErr)
	require.Equal(t, 1, idx)
}

func TestTryKeysInOrderTimeoutRotatesByDefault(t *testing.T) {
	var attempts int
	result, _, err := TryKeysInOrder(context.Background(), []string{"k1", "k2"}, func(context.Context, string) (string, error) {
		attempts++
		if attempts == 1 {
			return "", context.DeadlineExceeded
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 2, attempts)
}

func TestTryKeysInOrderFailFastOnTimeout(t *testing.T) {
	var attempts int
	_, idx, err := TryKeysInOrder(context.Background(), []string{"k1", "k2", "k3"}, func(context.Context, string) (string, error) {
		attempts++
		return "", context.DeadlineExceeded
	}, FailFastOnTimeout())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, ErrAllKeysFailed)
	require.Equal(t, 0, idx)
	require.Equal(t, 1, attempts)
}

func TestTryKeysInOrderFailFastOnStreamTimeout(t *testing.T) {
	var attempts int
	_, _, err := TryKeysInOrder(context.Background(), []string{"k1", "k2"}, func(context.Context, string) (string, error) {
		attempts++
		return "", ErrStreamTimeout
	}, FailFastOnTimeout())
	require.ErrorIs(t, err, ErrStreamTimeout)
	require.Equal(t, 1, attempts)
}

func TestTryKeysInOrderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts int
	_, _, err := TryKeysInOrder(ctx, []string{"k1", "k2", "k3"}, func(context.Context, string) (string, error) {
		attempts++
		cancel()
		return "", errors.New("boom")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

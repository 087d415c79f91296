package ai

import (
	"context"

	"github.com/pkg/errors"
)

// fakeEmbedder returns canned vectors per text and fails on unknown inputs
// unless a fallback vector is set.
type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	failOn   map[string]bool
	calls    []string
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: map[string][]float32{},
		failOn:  map[string]bool{},
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.failOn[text] {
		return nil, errors.New("embedding provider unavailable")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	if f.fallback != nil {
		return f.fallback, nil
	}
	return nil, errors.Errorf("no vector for %q", text)
}

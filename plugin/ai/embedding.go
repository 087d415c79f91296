package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/akasha/plugin/ai/cache"
	"github.com/hrygo/akasha/plugin/ai/timeout"
)

// EmbeddingService converts text into fixed-length vectors.
//
// Embedding failures are non-fatal by contract: callers on the recall and
// remember paths degrade to empty results instead of propagating the error,
// and the ingestion pipeline skips chunks that fail to embed.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type embeddingService struct {
	config  *Config
	userKey string
	cache   *cache.EmbeddingCache

	// newClient is swappable in tests.
	newClient func(key string) *openai.Client
}

// EmbeddingOption configures the embedding service.
type EmbeddingOption func(*embeddingService)

// WithUserKey makes a well-formed user-supplied key take priority over the
// default pool for this service instance.
func WithUserKey(key string) EmbeddingOption {
	return func(s *embeddingService) {
		s.userKey = key
	}
}

// NewEmbeddingService creates a new EmbeddingService with key fallback.
func NewEmbeddingService(cfg *Config, opts ...EmbeddingOption) EmbeddingService {
	s := &embeddingService{
		config: cfg,
		cache:  cache.NewEmbeddingCache(256, 5*time.Minute),
		newClient: func(key string) *openai.Client {
			clientConfig := openai.DefaultConfig(key)
			if cfg.BaseURL != "" {
				clientConfig.BaseURL = cfg.BaseURL
			}
			return openai.NewClientWithConfig(clientConfig)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}
	if vector, ok := s.cache.Get(text); ok {
		return vector, nil
	}

	keys := s.config.KeyPool(s.userKey)
	vector, _, err := TryKeysInOrder(ctx, keys, func(ctx context.Context, key string) ([]float32, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout.EmbeddingTimeout)
		defer cancel()

		resp, err := s.newClient(key).CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(s.config.EmbeddingModel),
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, errors.New("empty embedding response")
		}
		return resp.Data[0].Embedding, nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(text, vector)
	return vector, nil
}

package ai

import (
	"github.com/hrygo/akasha/internal/profile"
)

// minUserKeyLength is the minimum length for a user-supplied API key to be
// considered well-formed. Shorter values fall back to the default pool.
const minUserKeyLength = 10

// Config represents AI provider configuration.
type Config struct {
	// BaseURL points at an OpenAI-compatible completion/embedding API.
	BaseURL string

	// APIKeys is the default fallback pool, tried in order.
	APIKeys []string

	EmbeddingModel string
	ChatModel      string // fast model used by the simple protocol
	DeepModel      string // larger model used for drafting and synthesis
	CritiqueModel  string // fixed mid-size model used for the critique phase
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		BaseURL:        p.AIBaseURL,
		APIKeys:        p.AIAPIKeys,
		EmbeddingModel: p.AIEmbeddingModel,
		ChatModel:      p.AIChatModel,
		DeepModel:      p.AIDeepModel,
		CritiqueModel:  p.AICritiqueModel,
	}
}

// KeyPool resolves the ordered key list for one request. A well-formed
// user-supplied key is used alone; otherwise the default pool applies.
func (c *Config) KeyPool(userKey string) []string {
	if len(userKey) > minUserKeyLength {
		return []string{userKey}
	}
	return c.APIKeys
}

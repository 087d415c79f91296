package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where akasha stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// AI configuration
	AIBaseURL        string   // AKASHA_AI_BASE_URL (default: https://api.mistral.ai/v1)
	AIAPIKeys        []string // AKASHA_AI_API_KEYS, comma-separated fallback pool
	AIEmbeddingModel string   // AKASHA_AI_EMBEDDING_MODEL (default: mistral-embed)
	AIChatModel      string   // AKASHA_AI_CHAT_MODEL (default: mistral-small-latest)
	AIDeepModel      string   // AKASHA_AI_DEEP_MODEL (default: mistral-large-latest)
	AICritiqueModel  string   // AKASHA_AI_CRITIQUE_MODEL (default: mistral-medium-latest)

	// Archive (semantic memory) tuning. Defaults match the behavior the
	// retrieval layer was calibrated against; there is no derivation for the
	// threshold beyond observed recall quality on small personal archives.
	ArchiveChunkSize      int     // AKASHA_ARCHIVE_CHUNK_SIZE (default: 1000)
	ArchiveChunkOverlap   int     // AKASHA_ARCHIVE_CHUNK_OVERLAP (default: 500)
	ArchiveScoreThreshold float64 // AKASHA_ARCHIVE_SCORE_THRESHOLD (default: 0.45)
	ArchiveMaxFiles       int     // AKASHA_ARCHIVE_MAX_FILES (default: 5)
	ArchiveRecallLimit    int     // AKASHA_ARCHIVE_RECALL_LIMIT (default: 20)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from AKASHA_* environment variables.
func (p *Profile) FromEnv() {
	p.AIBaseURL = getEnvOrDefault("AKASHA_AI_BASE_URL", "https://api.mistral.ai/v1")
	if keys := os.Getenv("AKASHA_AI_API_KEYS"); keys != "" {
		p.AIAPIKeys = nil
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				p.AIAPIKeys = append(p.AIAPIKeys, key)
			}
		}
	}
	p.AIEmbeddingModel = getEnvOrDefault("AKASHA_AI_EMBEDDING_MODEL", "mistral-embed")
	p.AIChatModel = getEnvOrDefault("AKASHA_AI_CHAT_MODEL", "mistral-small-latest")
	p.AIDeepModel = getEnvOrDefault("AKASHA_AI_DEEP_MODEL", "mistral-large-latest")
	p.AICritiqueModel = getEnvOrDefault("AKASHA_AI_CRITIQUE_MODEL", "mistral-medium-latest")

	p.ArchiveChunkSize = getIntEnvOrDefault("AKASHA_ARCHIVE_CHUNK_SIZE", 1000)
	p.ArchiveChunkOverlap = getIntEnvOrDefault("AKASHA_ARCHIVE_CHUNK_OVERLAP", 500)
	p.ArchiveScoreThreshold = getFloatEnvOrDefault("AKASHA_ARCHIVE_SCORE_THRESHOLD", 0.45)
	p.ArchiveMaxFiles = getIntEnvOrDefault("AKASHA_ARCHIVE_MAX_FILES", 5)
	p.ArchiveRecallLimit = getIntEnvOrDefault("AKASHA_ARCHIVE_RECALL_LIMIT", 20)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.ArchiveChunkOverlap >= p.ArchiveChunkSize {
		return errors.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", p.ArchiveChunkOverlap, p.ArchiveChunkSize)
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("akasha_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}

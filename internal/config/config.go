package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	PagetreeAPIKey string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string

	// Structure detection
	TOCCheckPages    int
	MaxPagesPerNode  int
	MaxTokensPerNode int
	FixAttempts      int
	VerifySample     int
	GroupMaxTokens   int
	GroupOverlap     int
	WorkerLimit      int

	// Output enrichment
	AddNodeText       bool
	AddNodeSummary    bool
	AddDocDescription bool
	AddNodeID         bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		PagetreeAPIKey: os.Getenv("PAGETREE_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:         envOr("MODEL", "gpt-4o-2024-11-20"),

		TOCCheckPages:    envInt("TOC_CHECK_PAGES", 20),
		MaxPagesPerNode:  envInt("MAX_PAGES_PER_NODE", 10),
		MaxTokensPerNode: envInt("MAX_TOKENS_PER_NODE", 20000),
		FixAttempts:      envInt("FIX_ATTEMPTS", 3),
		VerifySample:     envInt("VERIFY_SAMPLE", 0),
		GroupMaxTokens:   envInt("GROUP_MAX_TOKENS", 20000),
		GroupOverlap:     envInt("GROUP_OVERLAP", 1),
		WorkerLimit:      envInt("WORKER_LIMIT", 0),

		AddNodeText:       envBool("ADD_NODE_TEXT", false),
		AddNodeSummary:    envBool("ADD_NODE_SUMMARY", false),
		AddDocDescription: envBool("ADD_DOC_DESCRIPTION", false),
		AddNodeID:         envBool("ADD_NODE_ID", true),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.TOCCheckPages <= 0 {
		cfg.TOCCheckPages = 20
	}
	if cfg.MaxPagesPerNode <= 0 {
		cfg.MaxPagesPerNode = 10
	}
	if cfg.MaxTokensPerNode <= 0 {
		cfg.MaxTokensPerNode = 20000
	}
	if cfg.FixAttempts <= 0 {
		cfg.FixAttempts = 3
	}
	if cfg.GroupMaxTokens <= 0 {
		cfg.GroupMaxTokens = 20000
	}
	if cfg.GroupOverlap < 0 {
		cfg.GroupOverlap = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

// ValidateServe covers the extra requirements of the HTTP server.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.PagetreeAPIKey == "" {
		return fmt.Errorf("PAGETREE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

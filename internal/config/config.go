// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables with the LECTERN_ prefix (runtime override)
//  2. Config file (~/.lectern/config.yaml)
//  3. Default values
//
// Categories:
//   - AI: generation model, embedder model
//   - Retrieval: chunk size/overlap, max search results, resolver floor
//   - Sessions: max remembered exchanges per session
//   - Ingestion: course document folder, index persistence directory
//   - Server: HTTP listen address
//
// Validation uses sentinel errors so callers can branch with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the Gemini API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the generation model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model name is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidChunkSize indicates the chunk character budget is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates the overlap budget is negative or
	// not smaller than the chunk size.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidMaxResults indicates the search result cap is out of range.
	ErrInvalidMaxResults = errors.New("invalid max results")

	// ErrInvalidMaxHistory indicates the session history bound is out of range.
	ErrInvalidMaxHistory = errors.New("invalid max history")

	// ErrInvalidResolverFloor indicates the resolver similarity floor is
	// outside [0, 1].
	ErrInvalidResolverFloor = errors.New("invalid resolver similarity floor")
)

// Defaults applied by Load when neither the environment nor the config file
// sets a value.
const (
	DefaultModelName     = "googleai/gemini-2.5-flash"
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultChunkSize is the chunk character budget C.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the inter-chunk overlap budget O in characters.
	DefaultChunkOverlap = 100

	// DefaultMaxResults caps similarity search results per query.
	DefaultMaxResults = 5

	// DefaultMaxHistory is the number of (query, answer) exchanges kept
	// per session.
	DefaultMaxHistory = 2

	DefaultDocsDir = "docs"
	DefaultAddr    = "127.0.0.1:8000"

	// MaxChunkSize bounds the chunk budget; larger chunks get truncated by
	// the embedding model anyway.
	MaxChunkSize = 8192

	// MaxAllowedResults bounds max_results to keep tool output readable.
	MaxAllowedResults = 50

	// MaxAllowedHistory bounds the session history to keep the first-stage
	// prompt within the context window.
	MaxAllowedHistory = 100
)

// Config stores application configuration.
type Config struct {
	// AI models
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Retrieval
	ChunkSize     int     `mapstructure:"chunk_size"`
	ChunkOverlap  int     `mapstructure:"chunk_overlap"`
	MaxResults    int     `mapstructure:"max_results"`
	ResolverFloor float32 `mapstructure:"resolver_floor"`

	// Sessions
	MaxHistory int `mapstructure:"max_history"`

	// Ingestion
	DocsDir string `mapstructure:"docs_dir"`
	// DataDir is the on-disk index location. Empty keeps the index in
	// memory; the docs folder is re-ingested on every start.
	DataDir string `mapstructure:"data_dir"`

	// Server
	Addr string `mapstructure:"addr"`
}

// Default returns a configuration populated with the package defaults.
func Default() *Config {
	return &Config{
		ModelName:     DefaultModelName,
		EmbedderModel: DefaultEmbedderModel,
		ChunkSize:     DefaultChunkSize,
		ChunkOverlap:  DefaultChunkOverlap,
		MaxResults:    DefaultMaxResults,
		MaxHistory:    DefaultMaxHistory,
		DocsDir:       DefaultDocsDir,
		Addr:          DefaultAddr,
	}
}

// Load reads configuration from defaults, config file and environment.
// A missing config file is not an error; the defaults are complete.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("max_results", DefaultMaxResults)
	v.SetDefault("resolver_floor", 0.0)
	v.SetDefault("max_history", DefaultMaxHistory)
	v.SetDefault("docs_dir", DefaultDocsDir)
	v.SetDefault("data_dir", "")
	v.SetDefault("addr", DefaultAddr)

	v.SetEnvPrefix("LECTERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir, err := configDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks all configuration values against their allowed ranges.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}
	if c.ChunkSize <= 0 || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidChunkSize, c.ChunkSize, MaxChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: got %d, must not be negative", ErrInvalidChunkOverlap, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			ErrInvalidChunkOverlap, c.ChunkOverlap, c.ChunkSize)
	}
	if c.MaxResults <= 0 || c.MaxResults > MaxAllowedResults {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidMaxResults, c.MaxResults, MaxAllowedResults)
	}
	if c.MaxHistory <= 0 || c.MaxHistory > MaxAllowedHistory {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidMaxHistory, c.MaxHistory, MaxAllowedHistory)
	}
	if c.ResolverFloor < 0 || c.ResolverFloor > 1 {
		return fmt.Errorf("%w: got %v, want 0..1", ErrInvalidResolverFloor, c.ResolverFloor)
	}
	return nil
}

// CheckAPIKey verifies the Gemini API key is present in the environment.
// Separated from Validate so offline commands (ingest dry runs, version)
// work without credentials.
func CheckAPIKey() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}

// configDir returns the lectern config directory (~/.lectern).
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".lectern"), nil
}

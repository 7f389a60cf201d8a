package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LogConfig controls the application logger.
type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	Console bool   `yaml:"console" toml:"console"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	Model       string `yaml:"model" toml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size" toml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type" toml:"type"`
	Dimension int                   `yaml:"dimension" toml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the document store backend.
type VectorStoreConfig struct {
	Type             string `yaml:"type" toml:"type"`
	Collection       string `yaml:"collection" toml:"collection"`
	PersistDirectory string `yaml:"persist_directory" toml:"persist_directory"`
	QueryCacheSize   int    `yaml:"query_cache_size" toml:"query_cache_size"`
	BatchSize        int    `yaml:"batch_size" toml:"batch_size"`
}

// RetrieverConfig configures ranking of search results.
type RetrieverConfig struct {
	Mode        string  `yaml:"mode" toml:"mode"`
	HybridAlpha float64 `yaml:"hybrid_alpha" toml:"hybrid_alpha"`
	TopK        int     `yaml:"top_k" toml:"top_k"`
}

// CatalogConfig points at an optional catalog file. Empty means the
// built-in sample catalog.
type CatalogConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Log         LogConfig         `yaml:"log" toml:"log"`
	Embedder    EmbedderConfig    `yaml:"embedder" toml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store" toml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever" toml:"retriever"`
	Catalog     CatalogConfig     `yaml:"catalog" toml:"catalog"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finish(defaultConfig())
		}
		return nil, err
	}
	cfg := defaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return finish(cfg)
}

// finish applies environment overrides and store resolution, then validates.
func finish(cfg *AppConfig) (*AppConfig, error) {
	applyEnv(cfg)
	resolveStore(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/catalog-search/config.yaml.
// If neither exists, it writes defaults to ~/.config/catalog-search/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	cfg, err = finish(cfg)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports configuration combinations the application cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hash", "openai":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	if c.Embedder.Dimension < 0 {
		return fmt.Errorf("embedder dimension must not be negative")
	}
	switch c.VectorStore.Type {
	case "memory":
		if c.VectorStore.PersistDirectory != "" {
			return fmt.Errorf("vector_store.persist_directory is set but type is memory")
		}
	case "sqlite", "badger":
		if c.VectorStore.PersistDirectory == "" {
			return fmt.Errorf("vector_store type %s needs persist_directory", c.VectorStore.Type)
		}
		if c.Embedder.Type == "openai" && c.Embedder.Dimension == 0 {
			return fmt.Errorf("persistent stores need embedder.dimension for the openai embedder")
		}
	default:
		return fmt.Errorf("unknown vector_store type %q", c.VectorStore.Type)
	}
	switch c.Retriever.Mode {
	case "vector", "hybrid":
	default:
		return fmt.Errorf("unknown retriever mode %q", c.Retriever.Mode)
	}
	if c.Retriever.HybridAlpha < 0 || c.Retriever.HybridAlpha > 1 {
		return fmt.Errorf("retriever.hybrid_alpha must be within [0, 1], got %v", c.Retriever.HybridAlpha)
	}
	if c.Retriever.TopK < 0 {
		return fmt.Errorf("retriever.top_k must not be negative")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "catalog-search", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Log:         LogConfig{Level: "info", Console: true},
		Embedder:    EmbedderConfig{Type: "hash", Dimension: 384},
		VectorStore: VectorStoreConfig{Type: "memory", Collection: "products", QueryCacheSize: 256, BatchSize: 32},
		Retriever:   RetrieverConfig{Mode: "vector", HybridAlpha: 0.5, TopK: 5},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hash"
	}
	if cfg.Embedder.Type == "hash" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 384
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "products"
	}
	if cfg.VectorStore.BatchSize == 0 {
		cfg.VectorStore.BatchSize = 32
	}
	if cfg.Retriever.Mode == "" {
		cfg.Retriever.Mode = "vector"
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 5
	}
}

// resolveStore picks sqlite when a persist directory is given without a
// durable store type.
func resolveStore(cfg *AppConfig) {
	if cfg.VectorStore.PersistDirectory == "" {
		return
	}
	if cfg.VectorStore.Type == "" || cfg.VectorStore.Type == "memory" {
		cfg.VectorStore.Type = "sqlite"
	}
}

// applyEnv lets the environment override file settings.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("CATALOG_COLLECTION"); v != "" {
		cfg.VectorStore.Collection = v
	}
	if v := os.Getenv("CATALOG_STORE"); v != "" {
		cfg.VectorStore.Type = v
	}
	if v := os.Getenv("CATALOG_PERSIST_DIR"); v != "" {
		cfg.VectorStore.PersistDirectory = v
	}
	if v := os.Getenv("CATALOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if debug, _ := strconv.ParseBool(os.Getenv("DEBUG")); debug {
		cfg.Log.Level = "debug"
	}
}

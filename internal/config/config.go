// Package config provides unified configuration loading for the Homefix services.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
)

// Config holds all configuration for the Homefix services.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Knowledge     KnowledgeConfig     `yaml:"knowledge"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	LLM           LLMConfig           `yaml:"llm"`
	Classifier    ClassifierConfig    `yaml:"classifier"`
	Search        SearchConfig        `yaml:"search"`
	Session       SessionConfig       `yaml:"session"`
	Cache         CacheConfig         `yaml:"cache"`
	Database      DatabaseConfig      `yaml:"database"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// KnowledgeConfig holds knowledge base and retrieval settings.
type KnowledgeConfig struct {
	Path string  `yaml:"path"`
	TopK int     `yaml:"top_k"`
	Band float32 `yaml:"band"`
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LLMConfig holds text-generation service settings.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	AnswerModel string        `yaml:"answer_model"`
	JudgeModel  string        `yaml:"judge_model"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ClassifierConfig holds inference server settings.
type ClassifierConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	InputName      string        `yaml:"input_name"`
	DefectOutput   string        `yaml:"defect_output"`
	LocationOutput string        `yaml:"location_output"`
	ImageSize      int           `yaml:"image_size"`
	Timeout        time.Duration `yaml:"timeout"`
}

// SearchConfig holds product search settings.
type SearchConfig struct {
	APIKey     string        `yaml:"api_key"`
	EngineID   string        `yaml:"engine_id"`
	Endpoint   string        `yaml:"endpoint"`
	PerKeyword int           `yaml:"per_keyword"`
	PerGroup   int           `yaml:"per_group"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SessionConfig holds conversation session storage settings.
type SessionConfig struct {
	Store       string        `yaml:"store"` // memory or redis
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	KeyPrefix   string        `yaml:"key_prefix"`
	// Anonymous keys requests without a session id: "address" (client
	// address) or "generate" (a new id per request, echoed in X-Session-ID).
	Anonymous string `yaml:"anonymous"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// DatabaseConfig holds audit database settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite, postgres or none
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	ServiceName    string `yaml:"service_name"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		cfg.Knowledge.Path = ResolveRelativePath(path, cfg.Knowledge.Path)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   110 * time.Second,
			GracefulShutdown: 10 * time.Second,
			AllowedOrigins:   []string{"*"},
		},
		Knowledge: KnowledgeConfig{
			Path: "homefix.md",
			TopK: 5,
			Band: 0.05,
		},
		Embedding: EmbeddingConfig{
			BaseURL:   "http://localhost:8081/v1",
			Model:     "jhgan/ko-sroberta-multitask",
			BatchSize: 32,
			Timeout:   30 * time.Second,
		},
		LLM: LLMConfig{
			AnswerModel: "gpt-3.5-turbo",
			JudgeModel:  "gpt-4o",
			Timeout:     60 * time.Second,
		},
		Classifier: ClassifierConfig{
			BaseURL:        "http://localhost:8080",
			Model:          "homefix-efficientnet-b5",
			InputName:      "input",
			DefectOutput:   "defect_logits",
			LocationOutput: "location_logits",
			ImageSize:      456,
			Timeout:        30 * time.Second,
		},
		Search: SearchConfig{
			PerKeyword: 5,
			PerGroup:   2,
			Timeout:    10 * time.Second,
		},
		Session: SessionConfig{
			Store:       "memory",
			IdleTimeout: 30 * time.Minute,
			KeyPrefix:   "homefix:session:",
			Anonymous:   "address",
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        10 * time.Minute,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "homefix-audit.db",
				MaxOpenConns: 1,
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    2,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			ServiceName:    "homefix-api",
			MetricsEnabled: true,
		},
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return domain.ConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Knowledge.TopK < 1 {
		return domain.ConfigError("knowledge.top_k must be at least 1", nil)
	}

	if c.Knowledge.Band <= 0 {
		return domain.ConfigError("knowledge.band must be positive", nil)
	}

	if c.Embedding.BatchSize < 1 {
		return domain.ConfigError("embedding.batch_size must be at least 1", nil)
	}

	if c.Classifier.ImageSize < 1 {
		return domain.ConfigError("classifier.image_size must be at least 1", nil)
	}

	if c.Search.PerKeyword < 1 || c.Search.PerKeyword > 10 {
		return domain.ConfigError("search.per_keyword must be between 1 and 10", nil)
	}

	if c.Search.PerGroup < 1 {
		return domain.ConfigError("search.per_group must be at least 1", nil)
	}

	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return domain.ConfigError(fmt.Sprintf("invalid session store: %s", c.Session.Store), nil)
	}

	if c.Session.Anonymous != "address" && c.Session.Anonymous != "generate" {
		return domain.ConfigError(fmt.Sprintf("invalid session.anonymous: %s", c.Session.Anonymous), nil)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return domain.ConfigError(fmt.Sprintf("invalid cache driver: %s", c.Cache.Driver), nil)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres", "none":
	default:
		return domain.ConfigError(fmt.Sprintf("invalid database driver: %s", c.Database.Driver), nil)
	}

	return nil
}

// RequireLLM fails when the text-generation credentials are missing.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return domain.ConfigError("OPENAI_API_KEY is not set", nil)
	}
	return nil
}

// SearchEnabled reports whether product search credentials are configured.
func (c *Config) SearchEnabled() bool {
	return c.Search.APIKey != "" && c.Search.EngineID != ""
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyRedisURL points the cache at v, either a redis:// URL carrying
// credentials and a database index or a bare host:port.
func applyRedisURL(cfg *Config, v string) error {
	cfg.Cache.Driver = "redis"
	if !strings.Contains(v, "://") {
		cfg.Cache.Redis.Addr = v
		return nil
	}

	opts, err := redis.ParseURL(v)
	if err != nil {
		return domain.ConfigError("invalid REDIS_URL", err)
	}
	cfg.Cache.Redis.Addr = opts.Addr
	cfg.Cache.Redis.Password = opts.Password
	cfg.Cache.Redis.DB = opts.DB
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("KNOWLEDGE_PATH"); v != "" {
		cfg.Knowledge.Path = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}

	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("CLASSIFIER_URL"); v != "" {
		cfg.Classifier.BaseURL = v
	}

	if v := os.Getenv("CLASSIFIER_MODEL"); v != "" {
		cfg.Classifier.Model = v
	}

	if v := os.Getenv("GOOGLE_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}

	if v := os.Getenv("GOOGLE_SEARCH_ENGINE_ID"); v != "" {
		cfg.Search.EngineID = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		if err := applyRedisURL(cfg, v); err != nil {
			return err
		}
	}

	if v := os.Getenv("SESSION_STORE"); v != "" {
		cfg.Session.Store = v
	}

	if v := os.Getenv("SESSION_ANONYMOUS"); v != "" {
		cfg.Session.Anonymous = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		switch {
		case v == "none":
			cfg.Database.Driver = "none"
		case strings.HasPrefix(v, "sqlite:"):
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		case strings.HasPrefix(v, "postgres"):
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	return nil
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if targetPath == "" || filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}

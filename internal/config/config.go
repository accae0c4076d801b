package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
}

type HTTPConfig struct {
	TimeoutSec int    `yaml:"timeout_sec"`
	Retry      int    `yaml:"retry"`
	UserAgent  string `yaml:"user_agent"`
}

type AppConfig struct {
	Store StoreConfig `yaml:"store"`
	HTTP  HTTPConfig  `yaml:"http"`

	LichessBaseURL  string `yaml:"lichess_base_url"`
	ChessComBaseURL string `yaml:"chesscom_base_url"`
}

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

func defaults() *AppConfig {
	return &AppConfig{
		Store: StoreConfig{
			Backend:    BackendSQLite,
			SQLitePath: defaultSQLitePath(),
		},
		HTTP: HTTPConfig{
			TimeoutSec: 30,
			Retry:      3,
			UserAgent:  "rooky/1.0",
		},
		LichessBaseURL:  "https://lichess.org/api",
		ChessComBaseURL: "https://api.chess.com/pub",
	}
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "rooky.db")
	}
	return filepath.Join(home, ".local", "share", "rooky", "rooky.db")
}

// Load builds the configuration from defaults, then the YAML file named by
// ROOKY_CONFIG (if any), then environment overrides.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("ROOKY_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("ROOKY_STORE")); v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ROOKY_SQLITE_PATH")); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LICHESS_BASE_URL")); v != "" {
		cfg.LichessBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_BASE_URL")); v != "" {
		cfg.ChessComBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ROOKY_HTTP_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTP.TimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOKY_HTTP_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTP.Retry = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOKY_USER_AGENT")); v != "" {
		cfg.HTTP.UserAgent = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

func (c *AppConfig) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("ROOKY_SQLITE_PATH is required for the sqlite store")
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.HTTP.TimeoutSec <= 0 {
		c.HTTP.TimeoutSec = 30
	}
	if c.HTTP.Retry <= 0 {
		c.HTTP.Retry = 1
	}
	return nil
}

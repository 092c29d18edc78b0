package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds quoteopt configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Store  StoreConfig  `yaml:"store"`
	Output OutputConfig `yaml:"output"`

	// ColumnAliases adds header spellings per canonical field, e.g. PartNumber: ["Item Code"].
	ColumnAliases map[string][]string `yaml:"column_aliases,omitempty"`
}

// StoreConfig selects where pins and runs are kept between invocations.
type StoreConfig struct {
	Kind       string `yaml:"kind"`
	SQLitePath string `yaml:"sqlite_path"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisKey   string `yaml:"redis_key"`
}

// OutputConfig controls report generation.
type OutputConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Store: StoreConfig{
			Kind:       StoreMemory,
			SQLitePath: "quoteopt.db",
			RedisAddr:  "localhost:6379",
			RedisKey:   "quoteopt:selections",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from QUOTEOPT_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("QUOTEOPT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("QUOTEOPT_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("QUOTEOPT_STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := getenv("QUOTEOPT_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := getenv("QUOTEOPT_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
}

// Validate normalizes enum fields to lower case and rejects unknown values.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Store.Kind = strings.ToLower(strings.TrimSpace(c.Store.Kind))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (expected: debug, info, warn, or error)", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (expected: text or json)", c.LogFormat)
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite store")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("invalid store kind %q (expected: memory, sqlite, or redis)", c.Store.Kind)
	}

	switch c.Output.Format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("invalid output format %q (expected: text, json, or csv)", c.Output.Format)
	}

	return nil
}

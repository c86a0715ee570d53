// Package config loads service configuration from an optional YAML file
// with environment-variable overrides. Defaults are usable out of the
// box for local development against a SQLite mirror.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "500ms" parse
// directly.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// DatabaseConfig selects and parameterizes the query backend.
type DatabaseConfig struct {
	Backend    string           `yaml:"backend"`
	SQLitePath string           `yaml:"sqlite_path"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// RateLimitConfig holds admission controller settings.
type RateLimitConfig struct {
	Window      Duration `yaml:"window"`
	MaxRequests int      `yaml:"max_requests"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      "0.0.0.0:8000",
			StaticDir: "./web/dist",
		},
		Database: DatabaseConfig{
			Backend:    "sqlite",
			SQLitePath: "./data/musicdb.sqlite",
			ClickHouse: ClickHouseConfig{
				Addr:     "localhost:9000",
				Database: "musicdb",
				Username: "default",
			},
		},
		Cache: CacheConfig{
			Dir: filepath.Join(os.TempDir(), "collab_graph_cache"),
		},
		RateLimit: RateLimitConfig{
			Window:      Duration(500 * time.Millisecond),
			MaxRequests: 10,
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if
// path is non-empty the file must exist and parse), then CG_* env
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers CG_* environment variables over the loaded values.
func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "CG_ADDR")
	setString(&c.Server.StaticDir, "CG_STATIC_DIR")
	setString(&c.Database.Backend, "CG_DB_BACKEND")
	setString(&c.Database.SQLitePath, "CG_SQLITE_PATH")
	setString(&c.Database.ClickHouse.Addr, "CG_CLICKHOUSE_ADDR")
	setString(&c.Database.ClickHouse.Database, "CG_CLICKHOUSE_DATABASE")
	setString(&c.Database.ClickHouse.Username, "CG_CLICKHOUSE_USERNAME")
	setString(&c.Database.ClickHouse.Password, "CG_CLICKHOUSE_PASSWORD")
	setString(&c.Cache.Dir, "CG_CACHE_DIR")

	if v := os.Getenv("CG_RATE_LIMIT_WINDOW"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.RateLimit.Window = Duration(parsed)
		}
	}
	if v := os.Getenv("CG_RATE_LIMIT_MAX"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.RateLimit.MaxRequests = parsed
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

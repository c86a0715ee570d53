package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
	defaultDialTimeout  = 10 * time.Second
	defaultMaxRetries   = 3
	defaultRetryDelay   = 1 * time.Second
)

// Config holds ClickHouse connection parameters.
type Config struct {
	Addr         string
	Database     string
	Username     string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
	DialTimeout  time.Duration
	MaxRetries   int
	TLS          *tls.Config
}

// DefaultConfig returns a connection config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "localhost:9000",
		Database:     "musicdb",
		Username:     "default",
		Password:     "",
		MaxOpenConns: defaultMaxOpenConns,
		MaxIdleConns: defaultMaxIdleConns,
		DialTimeout:  defaultDialTimeout,
		MaxRetries:   defaultMaxRetries,
		TLS:          nil, // No TLS for local development
	}
}

// connect establishes a connection to ClickHouse with retry logic.
func connect(ctx context.Context, config *Config) (driver.Conn, error) {
	if config == nil {
		config = DefaultConfig()
	}

	opts := &clickhouse.Options{
		Addr: []string{config.Addr},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      config.DialTimeout,
		MaxOpenConns:     config.MaxOpenConns,
		MaxIdleConns:     config.MaxIdleConns,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		TLS:              config.TLS,
	}

	var conn driver.Conn
	var err error
	retryDelay := defaultRetryDelay

	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		conn, err = clickhouse.Open(opts)
		if err == nil {
			if err = conn.Ping(ctx); err == nil {
				return conn, nil
			}
		}

		if attempt < config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}
	}

	return nil, fmt.Errorf("connecting to clickhouse at %s after %d attempts: %w", config.Addr, config.MaxRetries, err)
}

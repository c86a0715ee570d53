package musicdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fidde/collab_graph/internal/musicdb/clickhouse"
	"github.com/fidde/collab_graph/internal/musicdb/memory"
	"github.com/fidde/collab_graph/internal/musicdb/sqlite"
)

// Config selects and parameterizes a QuerySource backend.
type Config struct {
	// Backend is "sqlite", "clickhouse" or "memory".
	Backend string

	// SQLite-specific config
	SQLitePath string

	// ClickHouse-specific config
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() Config {
	return Config{
		Backend:            "sqlite",
		SQLitePath:         "./data/musicdb.sqlite",
		ClickHouseAddr:     "localhost:9000",
		ClickHouseDatabase: "musicdb",
		ClickHouseUsername: "default",
	}
}

// Open creates a QuerySource based on configuration.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (QuerySource, error) {
	switch cfg.Backend {
	case "memory":
		logger.Info("using in-memory query source")
		return memory.New(), nil

	case "sqlite":
		logger.Info("using sqlite query source", "path", cfg.SQLitePath)
		return sqlite.New(sqlite.Config{DBPath: cfg.SQLitePath})

	case "clickhouse":
		logger.Info("using clickhouse query source", "addr", cfg.ClickHouseAddr)
		chCfg := clickhouse.DefaultConfig()
		chCfg.Addr = cfg.ClickHouseAddr
		chCfg.Database = cfg.ClickHouseDatabase
		chCfg.Username = cfg.ClickHouseUsername
		chCfg.Password = cfg.ClickHousePassword
		return clickhouse.New(ctx, chCfg, logger)

	default:
		return nil, fmt.Errorf("unknown database backend: %s (supported: sqlite, clickhouse, memory)", cfg.Backend)
	}
}

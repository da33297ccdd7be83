package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cswnn/Capstone-Homefix2/internal/config"
)

// ErrDisabled is returned by Open when no database is configured.
var ErrDisabled = errors.New("database disabled")

// Open opens the audit database selected by cfg.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		driver string
		dsn    string
	)
	switch cfg.Driver {
	case "sqlite":
		driver, dsn = "sqlite3", cfg.SQLite.Path
	case "postgres":
		driver, dsn = "postgres", cfg.Postgres.DSN
	case "none", "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	switch cfg.Driver {
	case "sqlite":
		if cfg.SQLite.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.SQLite.MaxOpenConns)
		}
	case "postgres":
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	}

	return db, nil
}

package db

import (
	"database/sql"
	"fmt"

	"dashgate/internal/config"
)

// Open returns a *sql.DB based on the configured store driver.
func Open(cfg *config.Config) (*sql.DB, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return openSQLite(cfg.DBPath)
	case "postgres":
		return openPostgres(cfg.DBUrl)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

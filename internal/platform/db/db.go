package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open opens a database handle for the given driver and DSN and
// verifies connectivity. Supported drivers are "pgx" for Postgres and
// "sqlite" for a local file database.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: open %s database: %w", driver, err)
	}

	if driver == "pgx" {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open db: verify %s connection: %w", driver, err)
	}

	return db, nil
}

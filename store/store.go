// Package store opens the ledger database and manages its schema versioning.
package store

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLitePath = "rentledger.db"

// Open connects to the database named by dsn using the Postgres driver.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// OpenFromEnv connects using DATABASE_URL when set, otherwise falls back to
// a local SQLite file at RENTLEDGER_DB (default rentledger.db).
func OpenFromEnv() (*gorm.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return Open(dsn)
	}
	path := os.Getenv("RENTLEDGER_DB")
	if path == "" {
		path = defaultSQLitePath
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

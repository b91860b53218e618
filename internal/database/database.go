// Package database opens the SQLite file that holds the station catalog.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CatalogTable holds one row per reference station.
const CatalogTable = "reference_stations"

// Open opens (creating if needed) the database at dbPath with the
// pragmas used for a read-mostly catalog.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Set pragmas for performance
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")
	_, _ = db.Exec("PRAGMA cache_size=10000")
	return db, nil
}

// HasTable reports whether a table exists.
func HasTable(db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for %s table: %w", name, err)
	}
	return count > 0, nil
}

// EnsureCatalogSchema creates the reference_stations table if missing.
func EnsureCatalogSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reference_stations (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			region TEXT,
			exposure TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			PRIMARY KEY (kind, id)
		);
		CREATE INDEX IF NOT EXISTS idx_reference_stations_coords ON reference_stations(latitude, longitude);
	`)
	if err != nil {
		return fmt.Errorf("creating %s table: %w", CatalogTable, err)
	}
	return nil
}


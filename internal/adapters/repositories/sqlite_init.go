package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/ports"
	"store-locator-service/internal/validation"
	"strings"
)

// SQL dialect of the geocode cache schema.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var schemas = map[Dialect][]string{
	DialectSQLite: {
		`
	CREATE TABLE IF NOT EXISTS zip_geocode_cache (
        zip TEXT PRIMARY KEY,
        lat REAL NOT NULL,
        lng REAL NOT NULL,
        updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
    );
	`,
	},
	DialectPostgres: {
		`
	CREATE TABLE IF NOT EXISTS zip_geocode_cache (
        zip TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lng DOUBLE PRECISION NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_zip_geocode_cache_updated_at
    ON zip_geocode_cache(updated_at);
	`,
	},
}

// Initialize the geocode cache schema for the given dialect.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	statements, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("init schema: unsupported dialect %q", dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ZipSeed struct {
	Zip string  `json:"zip"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Populate a geocode cache with known postal codes from a JSON file.
func SeedFromJSON(ctx context.Context, c ports.GeocodeCache, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed zip cache: read %q: %w", jsonPath, err)
	}

	var data []ZipSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed zip cache: parse json: %w", err)
	}

	rows := make(map[string]domain.Coordinate, len(data))
	for i, item := range data {
		zip := strings.TrimSpace(item.Zip)
		if !validation.IsValidPostalCode(zip) {
			return 0, fmt.Errorf("seed zip cache: invalid zip at index %d: %q", i+1, item.Zip)
		}

		coord := domain.Coordinate{Lat: item.Lat, Lng: item.Lng}
		if !coord.Valid() {
			return 0, fmt.Errorf("seed zip cache: coordinate out of range at index %d: %v", i+1, coord)
		}
		rows[zip] = coord
	}

	if err := c.PutMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed zip cache: %w", err)
	}

	return len(rows), nil
}

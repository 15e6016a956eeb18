package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache is a Postgres-backed cache mapping postal codes to coordinates.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch the cached coordinate for a postal code.
func (s *SQLGeocodeCache) Get(ctx context.Context, zip string) (_ domain.Coordinate, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinate{}, false, errors.New("geocode cache: db is nil")
	}

	zip = strings.TrimSpace(zip)
	if zip == "" {
		return domain.Coordinate{}, false, errors.New("get geocode cache: zip must not be empty")
	}

	q := `
	SELECT lat, lng
    FROM zip_geocode_cache
    WHERE zip = $1;
	`

	var c domain.Coordinate
	err = s.DB.QueryRowContext(ctx, q, zip).Scan(&c.Lat, &c.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinate{}, false, nil
	}
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: query zip_geocode_cache table: %w", err)
	}

	return c, true, nil
}

// Store zip -> coordinate mappings in the cache.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinate) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO zip_geocode_cache (zip, lat, lng)
    VALUES ($1, $2, $3)
	ON CONFLICT (zip) DO UPDATE
	SET lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		updated_at = now();
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for zip, c := range results {
		if strings.TrimSpace(zip) == "" {
			return fmt.Errorf("insert geocode cache: empty zip key")
		}

		if _, err := stmt.ExecContext(ctx, zip, c.Lat, c.Lng); err != nil {
			return fmt.Errorf("insert geocode cache zip=%q: %w", zip, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

package ports

import (
	"context"
	"store-locator-service/internal/domain"
)

// Read-only postal code lookup with no I/O (the static location cache).
type ZipLookup interface {
	Lookup(zip string) (domain.Coordinate, bool)
}

// Persistent postal code -> coordinate cache populated from remote lookups.
type GeocodeCache interface {
	// Return the cached coordinate for zip; ok is false on a miss.
	Get(ctx context.Context, zip string) (c domain.Coordinate, ok bool, err error)
	// Store many zip -> coordinate mappings.
	PutMany(ctx context.Context, results map[string]domain.Coordinate) error
}

package cache

import "store-locator-service/internal/domain"

// StaticZipCache is the read-only postal code -> coordinate table built once
// from the store catalog, so a store's own ZIP never needs a network lookup.
// It is safe for concurrent use.
type StaticZipCache struct {
	entries map[string]domain.Coordinate
}

// NewStaticZipCache indexes every store's ZIP. When several stores share a
// ZIP, the first one in catalog order wins.
func NewStaticZipCache(stores []domain.Store) *StaticZipCache {
	entries := make(map[string]domain.Coordinate, len(stores))
	for _, s := range stores {
		if _, ok := entries[s.Zip]; ok {
			continue
		}
		entries[s.Zip] = s.Coordinate()
	}
	return &StaticZipCache{entries: entries}
}

func (c *StaticZipCache) Lookup(zip string) (domain.Coordinate, bool) {
	coord, ok := c.entries[zip]
	return coord, ok
}

// Entries returns a copy of the table, e.g. for seeding a persistent cache.
func (c *StaticZipCache) Entries() map[string]domain.Coordinate {
	out := make(map[string]domain.Coordinate, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

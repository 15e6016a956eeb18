package services

import (
	"cmp"
	"slices"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/geo"
)

// DefaultLimit caps a ranking when the caller gives no limit.
const DefaultLimit = 8

// Rank orders stores by great-circle distance from origin, nearest first,
// and keeps at most limit of them. A limit <= 0 means DefaultLimit.
//
// Stores at equal distance keep their input order. The input slice is not
// modified, and an empty input yields an empty, non-nil result.
func Rank(origin domain.Coordinate, stores []domain.Store, limit int) []domain.RankedStore {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]domain.RankedStore, 0, len(stores))
	for _, s := range stores {
		ranked = append(ranked, domain.RankedStore{
			Store:         s,
			DistanceMiles: geo.Distance(origin, s.Coordinate()),
		})
	}

	slices.SortStableFunc(ranked, func(a, b domain.RankedStore) int {
		return cmp.Compare(a.DistanceMiles, b.DistanceMiles)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

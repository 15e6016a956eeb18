package domain

// Source of a resolved coordinate. Used for display labeling only,
// never for ranking.
type Provenance string

const (
	ProvenanceCache   Provenance = "cache"
	ProvenanceRemote  Provenance = "remote"
	ProvenanceDevice  Provenance = "device"
	ProvenanceDefault Provenance = "default"
)

// A resolved search origin tagged with where it came from.
type ResolutionResult struct {
	Coordinate Coordinate
	Provenance Provenance
}

// Output of a store search: the origin, its display label and the ranked stores.
type SearchResult struct {
	Origin ResolutionResult
	Label  string
	Stores []RankedStore
}

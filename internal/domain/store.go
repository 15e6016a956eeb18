package domain

// Represents a single physical store location.
// Stores are loaded once at startup as configuration data and are never
// mutated afterwards.
type Store struct {
	Name    string
	Slug    string
	Address string
	City    string
	State   string
	Zip     string
	Lat     float64
	Lng     float64
}

func (s Store) Coordinate() Coordinate {
	return Coordinate{Lat: s.Lat, Lng: s.Lng}
}

// A Store annotated with its great-circle distance from a search origin.
// RankedStores are created fresh for every ranking request and never persisted.
type RankedStore struct {
	Store
	DistanceMiles float64
}

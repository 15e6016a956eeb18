package dto

type StoreResponse struct {
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zip     string  `json:"zip"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	URL     string  `json:"url"`
}

type ListStoresResponse struct {
	Stores []StoreResponse `json:"stores"`
}

type RankedStoreResponse struct {
	StoreResponse
	DistanceMiles float64 `json:"distance_miles"`
	DistanceLabel string  `json:"distance_label"`
	// Nearest store, shown as "My Store".
	Selected bool `json:"selected"`
}

type OriginResponse struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Provenance string  `json:"provenance"`
	Label      string  `json:"label"`
}

type SearchResponse struct {
	Origin  OriginResponse        `json:"origin"`
	Stores  []RankedStoreResponse `json:"stores"`
	Message string                `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

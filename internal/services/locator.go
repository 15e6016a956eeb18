package services

import (
	"context"
	"errors"
	"store-locator-service/internal/catalog"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/obs"
	"store-locator-service/internal/ports"
	"strings"
)

const (
	LabelDevice = "using your location"
	labelZip    = "from "
	labelArea   = "in "
)

// DefaultOrigin is the Philadelphia city center used by the browse view.
var DefaultOrigin = domain.Coordinate{Lat: 39.9526, Lng: -75.1652}

type LocatorConfig struct {
	Limit         int
	DefaultOrigin domain.Coordinate
	// Area name shown for the browse view, e.g. "Philadelphia area".
	DefaultLabel string
}

func DefaultLocatorConfig() LocatorConfig {
	return LocatorConfig{
		Limit:         DefaultLimit,
		DefaultOrigin: DefaultOrigin,
		DefaultLabel:  "Philadelphia area",
	}
}

// Locator runs store searches: resolve an origin, then rank the catalog
// around it. It holds no per-search state, so concurrent searches are
// independent of each other.
type Locator struct {
	catalog  *catalog.Catalog
	resolver *Resolver
	cfg      LocatorConfig
}

func NewLocator(c *catalog.Catalog, resolver *Resolver, cfg LocatorConfig) (*Locator, error) {
	if c == nil {
		return nil, errors.New("new locator: catalog is required")
	}
	if resolver == nil {
		return nil, errors.New("new locator: resolver is required")
	}

	def := DefaultLocatorConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.DefaultOrigin == (domain.Coordinate{}) || !cfg.DefaultOrigin.Valid() {
		cfg.DefaultOrigin = def.DefaultOrigin
	}
	if strings.TrimSpace(cfg.DefaultLabel) == "" {
		cfg.DefaultLabel = def.DefaultLabel
	}

	return &Locator{catalog: c, resolver: resolver, cfg: cfg}, nil
}

// Stores returns the full catalog in its configured order.
func (l *Locator) Stores() []domain.Store {
	return l.catalog.Stores()
}

// Limit returns the configured result cap.
func (l *Locator) Limit() int {
	return l.cfg.Limit
}

func (l *Locator) limit(n int) int {
	if n <= 0 {
		return l.cfg.Limit
	}
	return n
}

// Browse ranks the catalog around the default origin.
func (l *Locator) Browse(ctx context.Context, limit int) domain.SearchResult {
	return domain.SearchResult{
		Origin: domain.ResolutionResult{Coordinate: l.cfg.DefaultOrigin, Provenance: domain.ProvenanceDefault},
		Label:  labelArea + l.cfg.DefaultLabel,
		Stores: Rank(l.cfg.DefaultOrigin, l.catalog.Stores(), l.limit(limit)),
	}
}

// SearchByPostalCode trims input, resolves it and ranks the catalog around
// the result. Resolution failures are returned as *domain.ResolveError and
// no ranking is done.
func (l *Locator) SearchByPostalCode(ctx context.Context, input string, limit int) (_ domain.SearchResult, err error) {
	defer obs.Time(ctx, "search by postal code")(&err)

	zip := strings.TrimSpace(input)
	origin, err := l.resolver.ResolveFromPostalCode(ctx, zip)
	if err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{
		Origin: origin,
		Label:  labelZip + zip,
		Stores: Rank(origin.Coordinate, l.catalog.Stores(), l.limit(limit)),
	}, nil
}

// SearchByDevice resolves the device position and ranks the catalog around
// it. A nil positioner uses the resolver's configured one.
func (l *Locator) SearchByDevice(ctx context.Context, positioner ports.DevicePositioner, limit int) (_ domain.SearchResult, err error) {
	defer obs.Time(ctx, "search by device")(&err)

	resolver := l.resolver
	if positioner != nil {
		resolver = resolver.WithPositioner(positioner)
	}

	origin, err := resolver.ResolveFromDevice(ctx)
	if err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{
		Origin: origin,
		Label:  LabelDevice,
		Stores: Rank(origin.Coordinate, l.catalog.Stores(), l.limit(limit)),
	}, nil
}

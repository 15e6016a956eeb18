package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/obs"
	"store-locator-service/internal/ports"
	"store-locator-service/internal/validation"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultGeocodeTimeout   = 10 * time.Second
	DefaultPositionTimeout  = 10 * time.Second
	DefaultPositionMaxAge   = 5 * time.Minute
	opResolvePostalCode     = "resolve postal code"
	opResolveDevicePosition = "resolve device position"
)

type ResolverConfig struct {
	// Upper bound on one remote geocoding call, including retries.
	GeocodeTimeout time.Duration
	// Options passed to the device positioner on every request.
	Position ports.PositionOptions
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		GeocodeTimeout: DefaultGeocodeTimeout,
		Position: ports.PositionOptions{
			HighAccuracy: true,
			Timeout:      DefaultPositionTimeout,
			MaximumAge:   DefaultPositionMaxAge,
		},
	}
}

type ResolverOption func(*Resolver)

// WithGeocodeCache adds a persistent cache between the static table and the
// remote geocoder. Remote results are written back to it.
func WithGeocodeCache(c ports.GeocodeCache) ResolverOption {
	return func(r *Resolver) { r.persistent = c }
}

// WithPositioner sets the default device positioner.
func WithPositioner(p ports.DevicePositioner) ResolverOption {
	return func(r *Resolver) { r.positioner = p }
}

// Resolver turns a postal code or the device position into a search origin.
//
// Postal codes are answered from the static table first, then the persistent
// cache (if any), then the remote geocoder. Concurrent remote lookups for the
// same postal code share one request; each caller still observes its own
// context.
type Resolver struct {
	static     ports.ZipLookup
	persistent ports.GeocodeCache
	geocoder   ports.Geocoder
	positioner ports.DevicePositioner
	cfg        ResolverConfig

	group *singleflight.Group
}

func NewResolver(
	cfg ResolverConfig,
	static ports.ZipLookup,
	geocoder ports.Geocoder,
	opts ...ResolverOption,
) (*Resolver, error) {
	if static == nil {
		return nil, errors.New("new resolver: static lookup is required")
	}
	if geocoder == nil {
		return nil, errors.New("new resolver: geocoder is required")
	}

	def := DefaultResolverConfig()
	if cfg.GeocodeTimeout <= 0 {
		cfg.GeocodeTimeout = def.GeocodeTimeout
	}
	if cfg.Position.Timeout <= 0 {
		cfg.Position.Timeout = def.Position.Timeout
	}
	if cfg.Position.MaximumAge < 0 {
		cfg.Position.MaximumAge = 0
	}

	r := &Resolver{
		static:   static,
		geocoder: geocoder,
		cfg:      cfg,
		group:    &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the effective configuration.
func (r *Resolver) Config() ResolverConfig {
	return r.cfg
}

// ResolveFromPostalCode resolves a 5-digit postal code. zip must already be
// trimmed; it is validated here.
func (r *Resolver) ResolveFromPostalCode(ctx context.Context, zip string) (_ domain.ResolutionResult, err error) {
	defer obs.Time(ctx, opResolvePostalCode)(&err)

	if !validation.IsValidPostalCode(zip) {
		return domain.ResolutionResult{}, domain.NewResolveError(
			domain.KindInvalidFormat, opResolvePostalCode, fmt.Errorf("%q", zip),
		)
	}

	if c, ok := r.static.Lookup(zip); ok {
		return domain.ResolutionResult{Coordinate: c, Provenance: domain.ProvenanceCache}, nil
	}

	if r.persistent != nil {
		c, ok, err := r.persistent.Get(ctx, zip)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "geocode cache read failed",
				slog.String("req_id", obs.RequestID(ctx)),
				slog.String("zip", zip),
				slog.Any("err", err),
			)
		case ok && c.Valid():
			return domain.ResolutionResult{Coordinate: c, Provenance: domain.ProvenanceCache}, nil
		}
	}

	c, err := r.geocodeShared(ctx, zip)
	if err != nil {
		return domain.ResolutionResult{}, domain.NewResolveError(domain.KindGeocodingFailed, opResolvePostalCode, err)
	}
	return domain.ResolutionResult{Coordinate: c, Provenance: domain.ProvenanceRemote}, nil
}

// geocodeShared runs at most one remote lookup per postal code at a time.
// The shared lookup is detached from any single caller's cancellation and
// bounded by GeocodeTimeout instead.
func (r *Resolver) geocodeShared(ctx context.Context, zip string) (domain.Coordinate, error) {
	ch := r.group.DoChan(zip, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.GeocodeTimeout)
		defer cancel()

		c, err := r.geocoder.GeocodePostalCode(callCtx, zip)
		if err != nil {
			return nil, err
		}
		if !c.Valid() {
			return nil, fmt.Errorf("geocoder returned invalid coordinate %v", c)
		}

		if r.persistent != nil {
			if err := r.persistent.PutMany(callCtx, map[string]domain.Coordinate{zip: c}); err != nil {
				slog.WarnContext(ctx, "geocode cache write failed",
					slog.String("req_id", obs.RequestID(ctx)),
					slog.String("zip", zip),
					slog.Any("err", err),
				)
			}
		}
		return c, nil
	})

	select {
	case <-ctx.Done():
		return domain.Coordinate{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinate{}, res.Err
		}
		return res.Val.(domain.Coordinate), nil
	}
}

// WithPositioner returns a copy of r that resolves device positions through p.
// The copy shares the caches and in-flight lookups of r.
func (r *Resolver) WithPositioner(p ports.DevicePositioner) *Resolver {
	cp := *r
	cp.positioner = p
	return &cp
}

// HasPositioner reports whether a device positioner is configured.
func (r *Resolver) HasPositioner() bool {
	return r.positioner != nil
}

// ResolveFromDevice requests one position fix. Without a configured
// positioner the host has no geolocation capability.
func (r *Resolver) ResolveFromDevice(ctx context.Context) (_ domain.ResolutionResult, err error) {
	defer obs.Time(ctx, opResolveDevicePosition)(&err)

	p := r.positioner
	if p == nil {
		return domain.ResolutionResult{}, domain.NewResolveError(
			domain.KindGeolocationUnavailable, opResolveDevicePosition, nil,
		)
	}

	opts := r.cfg.Position
	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	fix, err := p.CurrentPosition(callCtx, opts)
	if err != nil {
		kind := domain.KindGeolocationFailed
		if errors.Is(err, ports.ErrPositionDenied) {
			kind = domain.KindGeolocationDenied
		}
		return domain.ResolutionResult{}, domain.NewResolveError(kind, opResolveDevicePosition, err)
	}
	if !fix.Coordinate.Valid() {
		return domain.ResolutionResult{}, domain.NewResolveError(
			domain.KindGeolocationFailed, opResolveDevicePosition,
			fmt.Errorf("invalid coordinate %v", fix.Coordinate),
		)
	}

	return domain.ResolutionResult{Coordinate: fix.Coordinate, Provenance: domain.ProvenanceDevice}, nil
}

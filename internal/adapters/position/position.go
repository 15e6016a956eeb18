// Package position provides device geolocation capabilities for the resolver.
//
// A server has no device of its own, so positions come from elsewhere: a fix
// the browser reported with the request, a fixed kiosk location, or a cache
// in front of either that reuses a recent fix up to PositionOptions.MaximumAge.
package position

import (
	"context"
	"fmt"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/ports"
	"sync"
	"time"
)

// Clock abstracts time.Now for tests.
type Clock func() time.Time

// Browser geolocation error codes.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// Reported is a fix (or failure) reported by the client device.
type Reported struct {
	fix     ports.Fix
	errCode int
	now     Clock
}

// FromFix wraps a client-reported fix. A zero timestamp means "just taken".
func FromFix(fix ports.Fix, now Clock) *Reported {
	if now == nil {
		now = time.Now
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = now()
	}
	return &Reported{fix: fix, now: now}
}

// FromErrorCode wraps a client-reported geolocation failure.
func FromErrorCode(code int) *Reported {
	return &Reported{errCode: code, now: time.Now}
}

func (r *Reported) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (ports.Fix, error) {
	if err := ctx.Err(); err != nil {
		return ports.Fix{}, err
	}

	switch r.errCode {
	case 0:
	case CodePermissionDenied:
		return ports.Fix{}, ports.ErrPositionDenied
	case CodeTimeout:
		return ports.Fix{}, ports.ErrPositionTimeout
	default:
		return ports.Fix{}, fmt.Errorf("client error code %d: %w", r.errCode, ports.ErrPositionUnavailable)
	}

	if opts.MaximumAge > 0 && r.now().Sub(r.fix.Timestamp) > opts.MaximumAge {
		return ports.Fix{}, fmt.Errorf("fix taken at %s: %w", r.fix.Timestamp.Format(time.RFC3339), ports.ErrPositionStale)
	}

	return r.fix, nil
}

// Static always reports the same location, e.g. an in-store kiosk.
type Static struct {
	coord domain.Coordinate
	now   Clock
}

func NewStatic(c domain.Coordinate, now Clock) *Static {
	if now == nil {
		now = time.Now
	}
	return &Static{coord: c, now: now}
}

func (s *Static) CurrentPosition(ctx context.Context, _ ports.PositionOptions) (ports.Fix, error) {
	if err := ctx.Err(); err != nil {
		return ports.Fix{}, err
	}
	return ports.Fix{Coordinate: s.coord, Timestamp: s.now()}, nil
}

// Cached reuses the last successful fix from source while it is younger than
// the requested MaximumAge, and acquires a new one otherwise.
// It is safe for concurrent use.
type Cached struct {
	source ports.DevicePositioner
	now    Clock

	mu   sync.Mutex
	last *ports.Fix
}

func NewCached(source ports.DevicePositioner, now Clock) *Cached {
	if now == nil {
		now = time.Now
	}
	return &Cached{source: source, now: now}
}

func (c *Cached) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (ports.Fix, error) {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	if last != nil && opts.MaximumAge > 0 && c.now().Sub(last.Timestamp) <= opts.MaximumAge {
		return *last, nil
	}

	fix, err := c.source.CurrentPosition(ctx, opts)
	if err != nil {
		return ports.Fix{}, err
	}

	c.mu.Lock()
	if c.last == nil || fix.Timestamp.After(c.last.Timestamp) {
		c.last = &fix
	}
	c.mu.Unlock()

	return fix, nil
}

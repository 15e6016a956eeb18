package ports

import (
	"context"
	"errors"
	"store-locator-service/internal/domain"
	"time"
)

var (
	// ErrPositionDenied is returned when the user refused location access.
	ErrPositionDenied = errors.New("position permission denied")
	// ErrPositionUnavailable is returned when no fix could be acquired.
	ErrPositionUnavailable = errors.New("position unavailable")
	// ErrPositionTimeout is returned when acquiring a fix took too long.
	ErrPositionTimeout = errors.New("position acquisition timed out")
	// ErrPositionStale is returned when the only available fix is older than MaximumAge.
	ErrPositionStale = errors.New("position fix is stale")
)

// Parameters for a one-time device position request.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// A previously acquired fix younger than this may be reused.
	MaximumAge time.Duration
}

// A device position fix and the time it was taken.
type Fix struct {
	Coordinate domain.Coordinate
	Timestamp  time.Time
}

// Device geolocation capability. A nil DevicePositioner means the host
// has no such capability.
type DevicePositioner interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Fix, error)
}

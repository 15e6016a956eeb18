package ports

import (
	"context"
	"errors"
	"store-locator-service/internal/domain"
)

// ErrPostalCodeNotFound is returned by a Geocoder when the remote service
// has no place for the requested postal code.
var ErrPostalCodeNotFound = errors.New("postal code not found")

// Contract for resolving a postal code to coordinates through a remote service.
type Geocoder interface {
	// Return the coordinates of the first place registered for zip.
	GeocodePostalCode(ctx context.Context, zip string) (domain.Coordinate, error)
}

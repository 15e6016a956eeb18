package geocoding

import (
	"context"
	"fmt"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/ports"
	"sync"
	"sync/atomic"
	"time"
)

// MockGeocoder is an in-memory Geocoder for tests and offline runs.
type MockGeocoder struct {
	mu     sync.RWMutex
	places map[string]domain.Coordinate
	// Delay is applied before every lookup; it honours ctx cancellation.
	Delay time.Duration
	// Err, when set, is returned for every lookup.
	Err error

	calls atomic.Int64
}

func NewMockGeocoder(places map[string]domain.Coordinate) *MockGeocoder {
	m := &MockGeocoder{places: make(map[string]domain.Coordinate, len(places))}
	for zip, c := range places {
		m.places[zip] = c
	}
	return m
}

// Calls reports how many lookups reached the mock.
func (m *MockGeocoder) Calls() int {
	return int(m.calls.Load())
}

func (m *MockGeocoder) GeocodePostalCode(ctx context.Context, zip string) (domain.Coordinate, error) {
	m.calls.Add(1)

	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.Coordinate{}, fmt.Errorf("geocode %q: %w", zip, ctx.Err())
		case <-t.C:
		}
	}

	if m.Err != nil {
		return domain.Coordinate{}, m.Err
	}

	m.mu.RLock()
	c, ok := m.places[zip]
	m.mu.RUnlock()
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w", zip, ports.ErrPostalCodeNotFound)
	}
	return c, nil
}

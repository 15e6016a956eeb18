package services

import (
	"context"
	"sync"
	"testing"

	"store-locator-service/internal/adapters/cache"
	"store-locator-service/internal/adapters/geocoding"
	"store-locator-service/internal/adapters/position"
	"store-locator-service/internal/catalog"
	"store-locator-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocator(t *testing.T, g *geocoding.MockGeocoder, cfg LocatorConfig, opts ...ResolverOption) *Locator {
	t.Helper()
	c := catalog.Default()
	r, err := NewResolver(DefaultResolverConfig(), cache.NewStaticZipCache(c.Stores()), g, opts...)
	require.NoError(t, err)
	l, err := NewLocator(c, r, cfg)
	require.NoError(t, err)
	return l
}

func TestNewLocatorDefaults(t *testing.T) {
	l := newTestLocator(t, geocoding.NewMockGeocoder(nil), LocatorConfig{})
	assert.Equal(t, DefaultLimit, l.Limit())
	assert.Len(t, l.Stores(), 8)

	_, err := NewLocator(nil, nil, LocatorConfig{})
	assert.Error(t, err)
}

func TestLocatorBrowse(t *testing.T) {
	l := newTestLocator(t, geocoding.NewMockGeocoder(nil), DefaultLocatorConfig())

	res := l.Browse(context.Background(), 0)
	assert.Equal(t, "in Philadelphia area", res.Label)
	assert.Equal(t, domain.ProvenanceDefault, res.Origin.Provenance)
	assert.Equal(t, DefaultOrigin, res.Origin.Coordinate)
	require.Len(t, res.Stores, 8)
	assert.Equal(t, "east-market", res.Stores[0].Slug)

	assert.Len(t, l.Browse(context.Background(), 2).Stores, 2)
}

func TestLocatorSearchByPostalCode(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	l := newTestLocator(t, g, DefaultLocatorConfig())

	res, err := l.SearchByPostalCode(context.Background(), "  19125 ", 3)
	require.NoError(t, err)

	assert.Equal(t, "from 19125", res.Label)
	assert.Equal(t, domain.ProvenanceCache, res.Origin.Provenance)
	require.Len(t, res.Stores, 3)
	assert.Equal(t, "fishtown", res.Stores[0].Slug)
	assert.Zero(t, res.Stores[0].DistanceMiles)
	assert.Equal(t, "northern-liberties", res.Stores[1].Slug)
	assert.InDelta(t, 0.98, res.Stores[1].DistanceMiles, 0.03)
	assert.Equal(t, 0, g.Calls())
}

func TestLocatorSearchByPostalCodeFailureSkipsRanking(t *testing.T) {
	l := newTestLocator(t, geocoding.NewMockGeocoder(nil), DefaultLocatorConfig())

	res, err := l.SearchByPostalCode(context.Background(), "abcde", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
	assert.Empty(t, res.Stores)

	res, err = l.SearchByPostalCode(context.Background(), "00000", 0)
	assert.ErrorIs(t, err, domain.ErrGeocodingFailed)
	assert.Empty(t, res.Stores)
}

func TestLocatorSearchByDevice(t *testing.T) {
	l := newTestLocator(t, geocoding.NewMockGeocoder(nil), DefaultLocatorConfig())
	ctx := context.Background()

	_, err := l.SearchByDevice(ctx, nil, 0)
	assert.ErrorIs(t, err, domain.ErrGeolocationUnavailable)

	rittenhouse := domain.Coordinate{Lat: 39.9417, Lng: -75.1757}
	res, err := l.SearchByDevice(ctx, position.NewStatic(rittenhouse, nil), 0)
	require.NoError(t, err)
	assert.Equal(t, LabelDevice, res.Label)
	assert.Equal(t, domain.ProvenanceDevice, res.Origin.Provenance)
	assert.Equal(t, "rittenhouse", res.Stores[0].Slug)

	_, err = l.SearchByDevice(ctx, position.FromErrorCode(position.CodePermissionDenied), 0)
	assert.ErrorIs(t, err, domain.ErrGeolocationDenied)
}

func TestLocatorSearchByDeviceUsesConfiguredPositioner(t *testing.T) {
	kiosk := domain.Coordinate{Lat: 39.9257, Lng: -75.1577}
	l := newTestLocator(t, geocoding.NewMockGeocoder(nil), DefaultLocatorConfig(),
		WithPositioner(position.NewStatic(kiosk, nil)))

	res, err := l.SearchByDevice(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, res.Stores, 1)
	assert.Equal(t, "passyunk", res.Stores[0].Slug)
}

// Two overlapping searches are not serialized or cancelled against each
// other; each caller gets the result for its own input.
func TestLocatorConcurrentSearchesAreIndependent(t *testing.T) {
	g := geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": newYork})
	l := newTestLocator(t, g, DefaultLocatorConfig())

	var wg sync.WaitGroup
	var remote, local domain.SearchResult
	var remoteErr, localErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		remote, remoteErr = l.SearchByPostalCode(context.Background(), "10001", 0)
	}()
	go func() {
		defer wg.Done()
		local, localErr = l.SearchByPostalCode(context.Background(), "19148", 0)
	}()
	wg.Wait()

	require.NoError(t, remoteErr)
	require.NoError(t, localErr)
	assert.Equal(t, "from 10001", remote.Label)
	assert.Equal(t, newYork, remote.Origin.Coordinate)
	assert.Equal(t, "from 19148", local.Label)
	assert.Equal(t, "passyunk", local.Stores[0].Slug)
}

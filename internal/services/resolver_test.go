package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"store-locator-service/internal/adapters/cache"
	"store-locator-service/internal/adapters/geocoding"
	"store-locator-service/internal/adapters/position"
	"store-locator-service/internal/catalog"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newYork = domain.Coordinate{Lat: 40.7506, Lng: -73.9972}

// memGeocodeCache is an in-memory ports.GeocodeCache with call counters.
type memGeocodeCache struct {
	mu      sync.Mutex
	entries map[string]domain.Coordinate
	getErr  error
	putErr  error
	gets    int
	puts    int
}

func newMemGeocodeCache() *memGeocodeCache {
	return &memGeocodeCache{entries: map[string]domain.Coordinate{}}
}

func (m *memGeocodeCache) Get(_ context.Context, zip string) (domain.Coordinate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return domain.Coordinate{}, false, m.getErr
	}
	c, ok := m.entries[zip]
	return c, ok, nil
}

func (m *memGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	for k, v := range results {
		m.entries[k] = v
	}
	return nil
}

// recordingPositioner captures the options it was called with.
type recordingPositioner struct {
	fix  ports.Fix
	err  error
	hang bool
	got  ports.PositionOptions
}

func (p *recordingPositioner) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (ports.Fix, error) {
	p.got = opts
	if p.hang {
		<-ctx.Done()
		return ports.Fix{}, ctx.Err()
	}
	return p.fix, p.err
}

func newTestResolver(t *testing.T, g ports.Geocoder, cfg ResolverConfig, opts ...ResolverOption) *Resolver {
	t.Helper()
	static := cache.NewStaticZipCache(catalog.Default().Stores())
	r, err := NewResolver(cfg, static, g, opts...)
	require.NoError(t, err)
	return r
}

func TestNewResolverRequiresCollaborators(t *testing.T) {
	_, err := NewResolver(DefaultResolverConfig(), nil, geocoding.NewMockGeocoder(nil))
	assert.Error(t, err)

	_, err = NewResolver(DefaultResolverConfig(), cache.NewStaticZipCache(nil), nil)
	assert.Error(t, err)
}

func TestNewResolverAppliesDefaults(t *testing.T) {
	r := newTestResolver(t, geocoding.NewMockGeocoder(nil), ResolverConfig{})
	cfg := r.Config()
	assert.Equal(t, 10*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 10*time.Second, cfg.Position.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Position.MaximumAge)
}

func TestResolveFromPostalCodeStaticHitSkipsRemote(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	r := newTestResolver(t, g, DefaultResolverConfig())

	res, err := r.ResolveFromPostalCode(context.Background(), "19125")
	require.NoError(t, err)

	assert.Equal(t, domain.Coordinate{Lat: 39.9737, Lng: -75.1287}, res.Coordinate)
	assert.Equal(t, domain.ProvenanceCache, res.Provenance)
	assert.Equal(t, 0, g.Calls())
}

func TestResolveFromPostalCodeRejectsInvalidFormat(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	r := newTestResolver(t, g, DefaultResolverConfig())

	for _, zip := range []string{"", "1912", "191255", "1912a", " 19125", "19125 "} {
		_, err := r.ResolveFromPostalCode(context.Background(), zip)
		assert.ErrorIs(t, err, domain.ErrInvalidFormat, "zip %q", zip)
		assert.Equal(t, domain.MsgInvalidPostalCode, domain.UserMessage(err))
	}
	assert.Equal(t, 0, g.Calls())
}

func TestResolveFromPostalCodeRemote(t *testing.T) {
	g := geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": newYork})
	r := newTestResolver(t, g, DefaultResolverConfig())

	res, err := r.ResolveFromPostalCode(context.Background(), "10001")
	require.NoError(t, err)
	assert.Equal(t, newYork, res.Coordinate)
	assert.Equal(t, domain.ProvenanceRemote, res.Provenance)
	assert.Equal(t, 1, g.Calls())
}

func TestResolveFromPostalCodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := geocoding.NewZippopotamClient(srv.URL)
	require.NoError(t, err)
	r := newTestResolver(t, client, DefaultResolverConfig())

	_, err = r.ResolveFromPostalCode(context.Background(), "00000")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeocodingFailed)
	assert.ErrorIs(t, err, ports.ErrPostalCodeNotFound)
	assert.Equal(t, domain.MsgPostalNotFound, domain.UserMessage(err))
}

func TestResolveFromPostalCodeTimeoutCancelsRequest(t *testing.T) {
	cancelled := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(cancelled)
	}))
	defer srv.Close()

	client, err := geocoding.NewZippopotamClient(srv.URL)
	require.NoError(t, err)

	cfg := DefaultResolverConfig()
	cfg.GeocodeTimeout = 50 * time.Millisecond
	r := newTestResolver(t, client, cfg)

	_, err = r.ResolveFromPostalCode(context.Background(), "10001")
	assert.ErrorIs(t, err, domain.ErrGeocodingFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
}

func TestResolveFromPostalCodeMalformedAndFailures(t *testing.T) {
	tests := []struct {
		name string
		g    ports.Geocoder
	}{
		{"remote error", &geocoding.MockGeocoder{Err: errors.New("connection refused")}},
		{"out of range", geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": {Lat: 91, Lng: 0}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, tt.g, DefaultResolverConfig())
			_, err := r.ResolveFromPostalCode(context.Background(), "10001")
			assert.ErrorIs(t, err, domain.ErrGeocodingFailed)
			assert.Equal(t, domain.KindGeocodingFailed, domain.KindOf(err))
		})
	}
}

func TestResolveFromPostalCodeCallerCancellation(t *testing.T) {
	g := geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": newYork})
	g.Delay = time.Second
	r := newTestResolver(t, g, DefaultResolverConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ResolveFromPostalCode(ctx, "10001")
	assert.ErrorIs(t, err, domain.ErrGeocodingFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveFromPostalCodePersistentCache(t *testing.T) {
	g := geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": newYork})
	pc := newMemGeocodeCache()
	r := newTestResolver(t, g, DefaultResolverConfig(), WithGeocodeCache(pc))
	ctx := context.Background()

	res, err := r.ResolveFromPostalCode(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceRemote, res.Provenance)
	assert.Equal(t, 1, pc.puts)
	assert.Equal(t, newYork, pc.entries["10001"])

	res, err = r.ResolveFromPostalCode(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceCache, res.Provenance)
	assert.Equal(t, newYork, res.Coordinate)
	assert.Equal(t, 1, g.Calls(), "second lookup served from the persistent cache")

	_, err = r.ResolveFromPostalCode(ctx, "19125")
	require.NoError(t, err)
	assert.Equal(t, 2, pc.gets, "static hits never reach the persistent cache")
}

func TestResolveFromPostalCodePersistentCacheErrorsAreMisses(t *testing.T) {
	g := geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": newYork})
	pc := newMemGeocodeCache()
	pc.getErr = errors.New("disk I/O error")
	pc.putErr = errors.New("read-only database")
	r := newTestResolver(t, g, DefaultResolverConfig(), WithGeocodeCache(pc))

	res, err := r.ResolveFromPostalCode(context.Background(), "10001")
	require.NoError(t, err)
	assert.Equal(t, newYork, res.Coordinate)
	assert.Equal(t, domain.ProvenanceRemote, res.Provenance)
	assert.Equal(t, 1, pc.puts)
}

func TestResolveFromPostalCodeCoalescesConcurrentLookups(t *testing.T) {
	g := geocoding.NewMockGeocoder(map[string]domain.Coordinate{"10001": newYork})
	g.Delay = 200 * time.Millisecond
	r := newTestResolver(t, g, DefaultResolverConfig())

	const n = 5
	var wg sync.WaitGroup
	results := make([]domain.ResolutionResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.ResolveFromPostalCode(context.Background(), "10001")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, newYork, results[i].Coordinate)
	}
	assert.Equal(t, 1, g.Calls())
}

func TestResolveFromDevice(t *testing.T) {
	home := domain.Coordinate{Lat: 39.9526, Lng: -75.1652}

	tests := []struct {
		name       string
		positioner ports.DevicePositioner
		wantKind   domain.ErrorKind
	}{
		{"no capability", nil, domain.KindGeolocationUnavailable},
		{"denied", position.FromErrorCode(position.CodePermissionDenied), domain.KindGeolocationDenied},
		{"unavailable fix", position.FromErrorCode(position.CodePositionUnavailable), domain.KindGeolocationFailed},
		{"device timeout", position.FromErrorCode(position.CodeTimeout), domain.KindGeolocationFailed},
		{"invalid fix", &recordingPositioner{fix: ports.Fix{Coordinate: domain.Coordinate{Lat: 120}}}, domain.KindGeolocationFailed},
		{"ok", position.NewStatic(home, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, geocoding.NewMockGeocoder(nil), DefaultResolverConfig(), WithPositioner(tt.positioner))

			res, err := r.ResolveFromDevice(context.Background())
			if tt.wantKind == 0 {
				require.NoError(t, err)
				assert.Equal(t, home, res.Coordinate)
				assert.Equal(t, domain.ProvenanceDevice, res.Provenance)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Equal(t, domain.MsgGeolocationError, domain.UserMessage(err))
		})
	}
}

func TestResolveFromDevicePassesOptionsAndTimesOut(t *testing.T) {
	p := &recordingPositioner{hang: true}
	cfg := DefaultResolverConfig()
	cfg.Position.Timeout = 20 * time.Millisecond
	r := newTestResolver(t, geocoding.NewMockGeocoder(nil), cfg, WithPositioner(p))

	_, err := r.ResolveFromDevice(context.Background())
	assert.ErrorIs(t, err, domain.ErrGeolocationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.True(t, p.got.HighAccuracy)
	assert.Equal(t, 5*time.Minute, p.got.MaximumAge)
}

func TestWithPositionerReturnsCopy(t *testing.T) {
	r := newTestResolver(t, geocoding.NewMockGeocoder(nil), DefaultResolverConfig())
	bound := r.WithPositioner(position.NewStatic(newYork, nil))

	assert.False(t, r.HasPositioner())
	assert.True(t, bound.HasPositioner())

	_, err := r.ResolveFromDevice(context.Background())
	assert.ErrorIs(t, err, domain.ErrGeolocationUnavailable)

	res, err := bound.ResolveFromDevice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, newYork, res.Coordinate)
}

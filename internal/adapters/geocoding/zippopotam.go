package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/obs"
	"store-locator-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.zippopotam.us"

// ZippopotamClient implements ports.Geocoder against the zippopotam.us
// postal code API (GET {base}/{country}/{zip}).
//
// It does not apply its own deadline: callers bound each lookup with the
// context, which also cancels the in-flight request.
// The client is safe for concurrent use.
type ZippopotamClient struct {
	session *http.Client
	baseURL string
	country string
	// initial retry backoff; doubled after each attempt
	backoff time.Duration
}

type Option func(*ZippopotamClient)

func WithHTTPClient(c *http.Client) Option {
	return func(z *ZippopotamClient) { z.session = c }
}

func WithCountry(country string) Option {
	return func(z *ZippopotamClient) { z.country = strings.ToLower(country) }
}

func WithBackoff(d time.Duration) Option {
	return func(z *ZippopotamClient) { z.backoff = d }
}

func NewZippopotamClient(baseURL string, opts ...Option) (*ZippopotamClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	client := &ZippopotamClient{
		session: &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		country: "us",
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.session == nil {
		return nil, errors.New("zippopotam client: http client is nil")
	}

	return client, nil
}

// GeocodePostalCode resolves zip to the coordinates of its first place.
// A 404 or an empty place list yields ports.ErrPostalCodeNotFound.
func (z *ZippopotamClient) GeocodePostalCode(ctx context.Context, zip string) (_ domain.Coordinate, err error) {
	defer obs.Time(ctx, "zippopotam.GeocodePostalCode")(&err)

	endpoint := z.baseURL + "/" + z.country + "/" + zip

	resp, err := z.doWithRetry(ctx, func() (*http.Request, error) {
		return z.newRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return domain.Coordinate{}, fmt.Errorf("geocode %s: %w", zip, ports.ErrPostalCodeNotFound)
		}
		return domain.Coordinate{}, fmt.Errorf("geocode %s: execute request: %w", zip, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %s: read response: %w", zip, err)
	}

	return parsePlaces(zip, body)
}

// parsePlaces extracts the first place's coordinates from a response body.
func parsePlaces(zip string, body []byte) (domain.Coordinate, error) {
	if !gjson.ValidBytes(body) {
		return domain.Coordinate{}, fmt.Errorf("geocode %s: invalid json payload", zip)
	}

	if gjson.GetBytes(body, "places.#").Int() == 0 {
		return domain.Coordinate{}, fmt.Errorf("geocode %s: no places: %w", zip, ports.ErrPostalCodeNotFound)
	}

	place := gjson.GetBytes(body, "places.0")
	lat, err := parseDegrees(place.Get("latitude"))
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %s: latitude: %w", zip, err)
	}
	lng, err := parseDegrees(place.Get("longitude"))
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %s: longitude: %w", zip, err)
	}

	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("geocode %s: coordinate out of range: %v", zip, c)
	}

	return c, nil
}

// The API encodes degrees as decimal strings; plain numbers are accepted too.
func parseDegrees(r gjson.Result) (float64, error) {
	switch r.Type {
	case gjson.String:
		return strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
	case gjson.Number:
		return r.Num, nil
	default:
		return 0, fmt.Errorf("missing or non-numeric value %q", r.Raw)
	}
}

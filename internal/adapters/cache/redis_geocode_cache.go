package cache

import (
	"context"
	"errors"
	"fmt"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "locator:zip:"

// RedisGeocodeCache keeps postal code -> coordinate mappings in Redis hashes
// with a TTL, so remote results expire and are looked up again eventually.
type RedisGeocodeCache struct {
	cli *redis.Client
	ttl time.Duration
}

// A ttl of zero keeps entries forever.
func NewRedisGeocodeCache(cli *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{cli: cli, ttl: ttl}
}

func redisKey(zip string) string { return redisKeyPrefix + zip }

// Fetch the cached coordinate for a postal code.
func (r *RedisGeocodeCache) Get(ctx context.Context, zip string) (_ domain.Coordinate, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	if r.cli == nil {
		return domain.Coordinate{}, false, errors.New("geocode cache: redis client is nil")
	}

	zip = strings.TrimSpace(zip)
	if zip == "" {
		return domain.Coordinate{}, false, errors.New("get geocode cache: zip must not be empty")
	}

	vals, err := r.cli.HMGet(ctx, redisKey(zip), "lat", "lng").Result()
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: hmget %s: %w", zip, err)
	}

	latStr, latOK := vals[0].(string)
	lngStr, lngOK := vals[1].(string)
	if !latOK || !lngOK {
		return domain.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: parse lat for %s: %w", zip, err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: parse lng for %s: %w", zip, err)
	}

	return domain.Coordinate{Lat: lat, Lng: lng}, true, nil
}

// Store zip -> coordinate mappings in one pipelined transaction.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinate) error {
	if r.cli == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for zip, c := range results {
			if strings.TrimSpace(zip) == "" {
				return fmt.Errorf("insert geocode cache: empty zip key")
			}

			key := redisKey(zip)
			pipe.HSet(ctx, key,
				"lat", strconv.FormatFloat(c.Lat, 'f', -1, 64),
				"lng", strconv.FormatFloat(c.Lng, 'f', -1, 64),
			)
			if r.ttl > 0 {
				pipe.Expire(ctx, key, r.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert geocode cache: redis pipeline: %w", err)
	}

	return nil
}

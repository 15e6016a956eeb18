// Package config reads service settings from the environment.
//
// A .env file, if present, is loaded by the binaries with godotenv before
// Load is called; real environment variables take precedence over it.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Persistent geocode cache backends.
const (
	CacheNone     = "none"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type Config struct {
	Port      string
	LogLevel  string
	LogPretty bool

	// Empty means the built-in catalog.
	CatalogPath string
	ResultLimit int

	GeocoderBaseURL string
	GeocodeTimeout  time.Duration

	CacheBackend  string
	DBPath        string
	DatabaseURL   string
	RedisAddr     string
	RedisCacheTTL time.Duration

	// Kiosk location; HasDeviceFix is false when unset.
	DeviceLat      float64
	DeviceLng      float64
	HasDeviceFix   bool
	PositionTimeout time.Duration
	PositionMaxAge time.Duration
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load builds a Config from the environment and validates it.
func Load() (Config, error) {
	var err error
	cfg := Config{
		Port:            Get("PORT", "8080"),
		LogLevel:        Get("LOG_LEVEL", "info"),
		CatalogPath:     Get("CATALOG_PATH", ""),
		GeocoderBaseURL: Get("GEOCODER_BASE_URL", "https://api.zippopotam.us"),
		CacheBackend:    strings.ToLower(Get("CACHE_BACKEND", CacheNone)),
		DBPath:          Get("DB_PATH", "data/app.db"),
		DatabaseURL:     Get("DATABASE_URL", ""),
		RedisAddr:       Get("REDIS_ADDR", "localhost:6379"),
	}

	if cfg.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return Config{}, err
	}
	if cfg.ResultLimit, err = getInt("RESULT_LIMIT", 8); err != nil {
		return Config{}, err
	}
	if cfg.ResultLimit < 1 {
		return Config{}, errors.Errorf("RESULT_LIMIT must be positive, got %d", cfg.ResultLimit)
	}
	if cfg.GeocodeTimeout, err = getDuration("GEOCODE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RedisCacheTTL, err = getDuration("REDIS_CACHE_TTL", 720*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PositionTimeout, err = getDuration("POSITION_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PositionMaxAge, err = getDuration("POSITION_MAX_AGE", 5*time.Minute); err != nil {
		return Config{}, err
	}

	switch cfg.CacheBackend {
	case CacheNone, CacheSQLite, CacheRedis:
	case CachePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when CACHE_BACKEND=postgres")
		}
	default:
		return Config{}, errors.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	lat, lng := Get("DEVICE_LAT", ""), Get("DEVICE_LNG", "")
	if (lat == "") != (lng == "") {
		return Config{}, errors.New("DEVICE_LAT and DEVICE_LNG must be set together")
	}
	if lat != "" {
		if cfg.DeviceLat, err = strconv.ParseFloat(lat, 64); err != nil {
			return Config{}, errors.Wrap(err, "parse DEVICE_LAT")
		}
		if cfg.DeviceLng, err = strconv.ParseFloat(lng, 64); err != nil {
			return Config{}, errors.Wrap(err, "parse DEVICE_LNG")
		}
		if cfg.DeviceLat < -90 || cfg.DeviceLat > 90 || cfg.DeviceLng < -180 || cfg.DeviceLng > 180 {
			return Config{}, errors.Errorf("device location out of range: %v,%v", cfg.DeviceLat, cfg.DeviceLng)
		}
		cfg.HasDeviceFix = true
	}

	return cfg, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "parse %s", key)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

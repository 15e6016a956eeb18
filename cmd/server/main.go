package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"store-locator-service/internal/adapters/cache"
	"store-locator-service/internal/adapters/geocoding"
	"store-locator-service/internal/adapters/position"
	"store-locator-service/internal/adapters/repositories"
	"store-locator-service/internal/api"
	"store-locator-service/internal/catalog"
	"store-locator-service/internal/config"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/db"
	"store-locator-service/internal/platform/logging"
	"store-locator-service/internal/ports"
	"store-locator-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (catalog, caches, zippopotam) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		slog.Error("configure logging", slog.Any("err", err))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if envErr != nil {
		slog.Info("No .env file found (using environment variables)")
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := catalog.Default()
	if cfg.CatalogPath != "" {
		c, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return err
		}
		stores = c
	}
	slog.Info("catalog loaded", slog.Int("stores", stores.Len()))

	static := cache.NewStaticZipCache(stores.Stores())

	geocoder, err := geocoding.NewZippopotamClient(cfg.GeocoderBaseURL)
	if err != nil {
		return err
	}

	opts := make([]services.ResolverOption, 0, 2)

	// Optional write-through cache for remote lookups.
	geocodeCache, closer, err := openGeocodeCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	if geocodeCache != nil {
		opts = append(opts, services.WithGeocodeCache(geocodeCache))
	}

	if cfg.HasDeviceFix {
		kiosk := domain.Coordinate{Lat: cfg.DeviceLat, Lng: cfg.DeviceLng}
		opts = append(opts, services.WithPositioner(position.NewCached(position.NewStatic(kiosk, nil), nil)))
		slog.Info("kiosk position configured", slog.Float64("lat", kiosk.Lat), slog.Float64("lng", kiosk.Lng))
	}

	resolverCfg := services.ResolverConfig{
		GeocodeTimeout: cfg.GeocodeTimeout,
		Position: ports.PositionOptions{
			HighAccuracy: true,
			Timeout:      cfg.PositionTimeout,
			MaximumAge:   cfg.PositionMaxAge,
		},
	}
	resolver, err := services.NewResolver(resolverCfg, static, geocoder, opts...)
	if err != nil {
		return err
	}

	locatorCfg := services.DefaultLocatorConfig()
	locatorCfg.Limit = cfg.ResultLimit
	locator, err := services.NewLocator(stores, resolver, locatorCfg)
	if err != nil {
		return err
	}

	// Write timeout leaves room for a cold remote lookup with retries.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(locator),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.GeocodeTimeout + 20*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", slog.String("addr", srv.Addr), slog.String("cache", cfg.CacheBackend))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openGeocodeCache opens the configured persistent cache backend, creating
// its schema when needed. It returns a nil cache for CACHE_BACKEND=none.
func openGeocodeCache(ctx context.Context, cfg config.Config) (ports.GeocodeCache, io.Closer, error) {
	switch cfg.CacheBackend {
	case config.CacheSQLite:
		sqlDB, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, sqlDB, repositories.DialectSQLite); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return cache.NewSqliteGeocodeCache(sqlDB), sqlDB, nil

	case config.CachePostgres:
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, sqlDB, repositories.DialectPostgres); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return cache.NewSQLGeocodeCache(sqlDB), sqlDB, nil

	case config.CacheRedis:
		cli := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := cli.Ping(ctx).Err(); err != nil {
			cli.Close()
			return nil, nil, fmt.Errorf("open redis %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisGeocodeCache(cli, cfg.RedisCacheTTL), cli, nil

	default:
		return nil, nopCloser{}, nil
	}
}

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"store-locator-service/internal/adapters/cache"
	"store-locator-service/internal/adapters/repositories"
	"store-locator-service/internal/catalog"
	"store-locator-service/internal/config"
	"store-locator-service/internal/platform/db"
	"store-locator-service/internal/ports"

	"github.com/joho/godotenv"
)

// dbtool creates the geocode cache schema and pre-seeds it with the catalog's
// own ZIPs plus an optional JSON file of extra postal codes.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}

	ctx := context.Background()

	var (
		sqlDB   *sql.DB
		dialect repositories.Dialect
		gc      ports.GeocodeCache
	)
	switch cfg.CacheBackend {
	case config.CachePostgres:
		sqlDB, err = db.Open(cfg.DatabaseURL)
		dialect = repositories.DialectPostgres
		if err == nil {
			gc = cache.NewSQLGeocodeCache(sqlDB)
		}
	case config.CacheSQLite:
		sqlDB, err = db.OpenSQLite(cfg.DBPath)
		dialect = repositories.DialectSQLite
		if err == nil {
			gc = cache.NewSqliteGeocodeCache(sqlDB)
		}
	default:
		slog.Error("CACHE_BACKEND must be sqlite or postgres", slog.String("backend", cfg.CacheBackend))
		os.Exit(1)
	}
	if err != nil {
		fatal("open database", err)
	}
	defer sqlDB.Close()

	stores := catalog.Default()
	if cfg.CatalogPath != "" {
		if stores, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			fatal("load catalog", err)
		}
	}

	seedPath := config.Get("SEED_PATH", "")
	if err := initAndSeed(ctx, sqlDB, dialect, gc, stores, seedPath); err != nil {
		fatal("init and seed", err)
	}
}

func initAndSeed(
	ctx context.Context,
	sqlDB *sql.DB,
	dialect repositories.Dialect,
	gc ports.GeocodeCache,
	stores *catalog.Catalog,
	seedPath string,
) error {
	slog.Info("Initializing database schema...", slog.String("dialect", string(dialect)))
	if err := repositories.InitSchema(ctx, sqlDB, dialect); err != nil {
		return err
	}
	slog.Info("Schema ready.")

	entries := cache.NewStaticZipCache(stores.Stores()).Entries()
	if err := gc.PutMany(ctx, entries); err != nil {
		return err
	}
	slog.Info("Seeded catalog ZIPs.", slog.Int("rows", len(entries)))

	if seedPath == "" {
		return nil
	}
	n, err := repositories.SeedFromJSON(ctx, gc, seedPath)
	if err != nil {
		return err
	}
	slog.Info("Seeding complete.", slog.String("path", seedPath), slog.Int("rows", n))

	return nil
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("err", err))
	os.Exit(1)
}

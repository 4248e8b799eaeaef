package main

import (
	"context"
	"customs-analytics-service/internal/adapters/cache"
	"customs-analytics-service/internal/adapters/history"
	"customs-analytics-service/internal/adapters/indicators"
	"customs-analytics-service/internal/adapters/repositories"
	"customs-analytics-service/internal/config"
	"customs-analytics-service/internal/ingest"
	"customs-analytics-service/internal/platform/db"
	"customs-analytics-service/internal/ports"
	"customs-analytics-service/internal/reporting"
	"customs-analytics-service/internal/services"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// main runs the analysis pipeline once and writes the report artifacts.
// With DATA_CSV set the shipments are loaded straight from the file into
// an in-memory repository; otherwise they come from the configured
// database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	ctx := context.Background()

	var repo ports.ShipmentRepository
	var lpiCache indicators.IndicatorCache

	if csvPath := os.Getenv("DATA_CSV"); csvPath != "" {
		repo = loadCSV(ctx, csvPath)
		if enrichEnabled() {
			// CSV runs have no shipment database, so the LPI cache
			// lives in its own local SQLite file.
			conn, err := db.Open("sqlite", config.Get("LPI_CACHE_PATH", "data/lpi_cache.db"))
			if err != nil {
				log.Fatal(err)
			}
			defer conn.Close()
			if err := repositories.InitSchema(conn); err != nil {
				log.Fatal(err)
			}
			lpiCache = cache.NewSqliteIndicatorCache(conn)
		}
	} else {
		driver, dsn := dbSettings()
		conn, err := db.Open(driver, dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		if err := repositories.InitSchema(conn); err != nil {
			log.Fatal(err)
		}
		if driver == "pgx" {
			repo = repositories.NewSQLShipmentRepository(conn)
			lpiCache = cache.NewSQLIndicatorCache(conn)
		} else {
			repo = repositories.NewSqliteShipmentRepository(conn)
			lpiCache = cache.NewSqliteIndicatorCache(conn)
		}
	}

	opts := services.PipelineOptions{}
	if enrichEnabled() {
		opts.Indicators = indicators.NewWorldBankProvider(lpiCache)
		log.Println("LPI enrichment enabled (World Bank API)")
	}
	if influxURL := os.Getenv("INFLUX_URL"); influxURL != "" {
		sink := history.NewInfluxHistorySink(
			influxURL,
			os.Getenv("INFLUX_TOKEN"),
			os.Getenv("INFLUX_ORG"),
			config.Get("INFLUX_BUCKET", "analysis"),
		)
		defer sink.Close()
		opts.History = sink
	}

	pipeline := services.NewPipeline(repo, cfg, opts)

	snap, err := pipeline.Run(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}

	outDir := config.Get("REPORT_DIR", cfg.Reports.Dir)
	if err := reporting.NewWriter(outDir).WriteAll(snap); err != nil {
		log.Fatal(err)
	}

	log.Printf("op=analyze run_id=%s rows=%d routes_ranked=%d leaks=%d dur=%dms",
		snap.RunID, snap.DatasetRows, len(snap.RouteRankings), len(snap.Leaks), snap.DurationMS)
	for _, w := range snap.Warnings {
		log.Printf("warning: %s", w)
	}
	log.Printf("report artifacts written dir=%s", outDir)
}

// loadCSV reads the shipment CSV into an in-memory repository.
func loadCSV(ctx context.Context, path string) ports.ShipmentRepository {
	result, err := ingest.NewLoader().LoadCSVFile(path)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("op=ingest.load file=%s loaded=%d skipped=%d", path, result.Loaded, result.Skipped)
	for _, reason := range result.Reasons {
		log.Printf("skipped: %s", reason)
	}

	repo := repositories.NewMemoryShipmentRepository()
	if err := repo.InsertShipments(ctx, result.Shipments); err != nil {
		log.Fatal(err)
	}
	return repo
}

func enrichEnabled() bool {
	return strings.EqualFold(config.Get("ENRICH_LPI", "false"), "true")
}

// dbSettings resolves the database driver and DSN from the environment.
// DB_DRIVER selects "pgx" (Postgres, DSN from DATABASE_URL) or "sqlite"
// (local file, path from DB_PATH).
func dbSettings() (driver, dsn string) {
	driver = config.Get("DB_DRIVER", "sqlite")
	switch driver {
	case "pgx":
		dsn = os.Getenv("DATABASE_URL")
		if strings.TrimSpace(dsn) == "" {
			log.Fatal("DATABASE_URL is required when DB_DRIVER=pgx")
		}
	case "sqlite":
		dsn = config.Get("DB_PATH", "data/shipments.db")
	default:
		log.Fatalf("unsupported DB_DRIVER %q (use pgx or sqlite)", driver)
	}
	return driver, dsn
}

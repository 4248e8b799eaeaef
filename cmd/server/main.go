package main

import (
	"context"
	"customs-analytics-service/internal/adapters/cache"
	"customs-analytics-service/internal/adapters/history"
	"customs-analytics-service/internal/adapters/indicators"
	"customs-analytics-service/internal/adapters/repositories"
	"customs-analytics-service/internal/api"
	"customs-analytics-service/internal/config"
	"customs-analytics-service/internal/platform/db"
	"customs-analytics-service/internal/platform/obs"
	"customs-analytics-service/internal/ports"
	"customs-analytics-service/internal/services"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Redis, World Bank,
// InfluxDB) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	driver, dsn := dbSettings()

	conn, err := db.Open(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal(err)
	}

	var repo ports.ShipmentRepository
	var lpiCache indicators.IndicatorCache
	switch driver {
	case "pgx":
		repo = repositories.NewSQLShipmentRepository(conn)
		lpiCache = cache.NewSQLIndicatorCache(conn)
	default:
		repo = repositories.NewSqliteShipmentRepository(conn)
		lpiCache = cache.NewSqliteIndicatorCache(conn)
	}

	cfg := config.Default()
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	metrics := obs.NewMetrics()
	opts := services.PipelineOptions{Metrics: metrics}

	// Redis keeps the latest snapshot across restarts. Without it the
	// pipeline still serves the in-memory copy.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		opts.Cache = cache.NewRedisSnapshotCache(client, cfg.Cache.TTL)
		log.Printf("snapshot cache enabled addr=%s", addr)
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
		log.Printf("run history sink enabled url=%s", influxURL)
	}

	if strings.EqualFold(config.Get("ENRICH_LPI", "false"), "true") {
		opts.Indicators = indicators.NewWorldBankProvider(lpiCache)
		log.Println("LPI enrichment enabled (World Bank API)")
	}

	pipeline := services.NewPipeline(repo, cfg, opts)

	if cfgPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := config.Watch(ctx, cfgPath, func(next *config.Config) {
				pipeline.SetConfig(ctx, next)
			}); err != nil {
				log.Printf("config watch failed path=%s err=%v", cfgPath, err)
			}
		}()
	}

	router := api.NewRouter(repo, pipeline, metrics)

	// Timeouts are sized for analysis runs triggered over HTTP; a run
	// over a large dataset with cold LPI caches takes tens of seconds.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
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

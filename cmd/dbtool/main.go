package main

import (
	"context"
	"customs-analytics-service/internal/adapters/repositories"
	"customs-analytics-service/internal/config"
	"customs-analytics-service/internal/ingest"
	"customs-analytics-service/internal/platform/db"
	"customs-analytics-service/internal/ports"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// main initializes the database schema and imports the shipment CSV
// named by DATA_CSV. With no DATA_CSV it only prepares the schema.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver, dsn := dbSettings()
	conn, err := db.Open(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	csvPath := os.Getenv("DATA_CSV")
	if csvPath == "" {
		return
	}

	var repo ports.ShipmentRepository
	if driver == "pgx" {
		repo = repositories.NewSQLShipmentRepository(conn)
	} else {
		repo = repositories.NewSqliteShipmentRepository(conn)
	}

	if err := importCSV(context.Background(), repo, csvPath); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

// importCSV loads the shipment file and upserts every valid row.
func importCSV(ctx context.Context, repo ports.ShipmentRepository, path string) error {
	log.Printf("Importing shipments file=%s", path)

	result, err := ingest.NewLoader().LoadCSVFile(path)
	if err != nil {
		return err
	}
	for _, reason := range result.Reasons {
		log.Printf("skipped: %s", reason)
	}

	if err := repo.InsertShipments(ctx, result.Shipments); err != nil {
		return err
	}

	total, err := repo.CountShipments(ctx)
	if err != nil {
		return err
	}
	log.Printf("Import complete loaded=%d skipped=%d total=%d", result.Loaded, result.Skipped, total)
	return nil
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

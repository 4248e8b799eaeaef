package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema. The DDL sticks to the subset both
// Postgres and SQLite accept, so one schema serves either driver.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createShipmentsQuery := `
	CREATE TABLE IF NOT EXISTS shipments (
		shipment_id TEXT PRIMARY KEY,
		shipment_date TEXT NOT NULL,
		estimated_arrival_date TEXT NOT NULL,
		actual_arrival_date TEXT NOT NULL,
		origin_country TEXT NOT NULL,
		destination_country TEXT NOT NULL,
		transport_mode TEXT NOT NULL,
		carrier_name TEXT NOT NULL,
		route_code TEXT NOT NULL,
		commodity_type TEXT NOT NULL,
		tariff_category TEXT NOT NULL,
		inspection_type TEXT NOT NULL,
		document_status TEXT NOT NULL,
		delay_reason TEXT NOT NULL,
		declared_value_usd DOUBLE PRECISION NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		compliance_score DOUBLE PRECISION NOT NULL,
		prior_offense_count INTEGER NOT NULL,
		route_risk_index DOUBLE PRECISION NOT NULL,
		customs_delay_days DOUBLE PRECISION NOT NULL,
		origin_lpi_overall DOUBLE PRECISION,
		origin_lpi_customs DOUBLE PRECISION,
		origin_lpi_infrastructure DOUBLE PRECISION,
		origin_lpi_logistics DOUBLE PRECISION,
		origin_lpi_tracking DOUBLE PRECISION,
		origin_lpi_timeliness DOUBLE PRECISION,
		destination_lpi_overall DOUBLE PRECISION,
		destination_lpi_customs DOUBLE PRECISION,
		destination_lpi_infrastructure DOUBLE PRECISION,
		destination_lpi_logistics DOUBLE PRECISION,
		destination_lpi_tracking DOUBLE PRECISION,
		destination_lpi_timeliness DOUBLE PRECISION,
		route_lpi_average DOUBLE PRECISION,
		route_lpi_difference DOUBLE PRECISION,
		route_customs_lpi_average DOUBLE PRECISION,
		route_infrastructure_gap DOUBLE PRECISION
	);
	`

	createIndicatorCacheQuery := `
	CREATE TABLE IF NOT EXISTS indicator_cache (
		country TEXT NOT NULL,
		indicator TEXT NOT NULL,
		year INTEGER NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (country, indicator)
	);
	`

	createRouteIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_shipments_route_code
    ON shipments(route_code);
	`

	createCountryIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_shipments_origin_destination
    ON shipments(origin_country, destination_country);
	`

	statements := []string{
		createShipmentsQuery,
		createIndicatorCacheQuery,
		createRouteIndexQuery,
		createCountryIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

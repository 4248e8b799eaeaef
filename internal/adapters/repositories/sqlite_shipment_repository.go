package repositories

import (
	"context"
	"customs-analytics-service/internal/domain"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite-backed implementation of the ShipmentRepository port.
type SqliteShipmentRepository struct {
	DB *sql.DB
}

func NewSqliteShipmentRepository(db *sql.DB) *SqliteShipmentRepository {
	return &SqliteShipmentRepository{DB: db}
}

// Return stored shipments ordered by shipment ID. A limit of 0 means
// no limit; SQLite spells that LIMIT -1 when an offset is present.
func (s *SqliteShipmentRepository) ListShipments(ctx context.Context, limit, offset int) ([]*domain.Shipment, error) {
	if s.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	q := fmt.Sprintf(`
	SELECT %s
    FROM shipments
    ORDER BY shipment_id`, shipmentColumnList())

	var args []any
	if limit > 0 || offset > 0 {
		if limit <= 0 {
			limit = -1
		}
		q += " LIMIT ? OFFSET ?"
		args = append(args, limit, max(offset, 0))
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: query shipments table: %w", err)
	}
	defer rows.Close()

	shipments := make([]*domain.Shipment, 0, 64)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("list shipments: scan row: %w", err)
		}
		shipments = append(shipments, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments: row iteration: %w", err)
	}

	return shipments, nil
}

// Count all stored shipments.
func (s *SqliteShipmentRepository) CountShipments(ctx context.Context) (int, error) {
	if s.DB == nil {
		return 0, errors.New("shipment repository: DB is nil")
	}

	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM shipments;`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count shipments: %w", err)
	}
	return n, nil
}

// Insert or update shipments keyed by shipment ID.
func (s *SqliteShipmentRepository) InsertShipments(ctx context.Context, shipments []*domain.Shipment) error {
	if s.DB == nil {
		return errors.New("shipment repository: DB is nil")
	}

	if len(shipments) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert shipments: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(shipmentColumns)), ", ")

	q := fmt.Sprintf(`
	INSERT OR REPLACE INTO shipments (%s)
    VALUES (%s);
	`, shipmentColumnList(), placeholders)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("insert shipments: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, sh := range shipments {
		if strings.TrimSpace(sh.ShipmentID) == "" {
			return fmt.Errorf("insert shipments: empty shipment ID")
		}

		if _, err := stmt.ExecContext(ctx, shipmentArgs(sh)...); err != nil {
			return fmt.Errorf("insert shipments id=%q: %w", sh.ShipmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert shipments: commit tx: %w", err)
	}

	return nil
}

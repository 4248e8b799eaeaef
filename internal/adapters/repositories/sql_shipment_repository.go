package repositories

import (
	"context"
	"customs-analytics-service/internal/domain"
	"customs-analytics-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Postgres-backed implementation of the ShipmentRepository port.
type SQLShipmentRepository struct {
	DB *sql.DB
}

func NewSQLShipmentRepository(db *sql.DB) *SQLShipmentRepository {
	return &SQLShipmentRepository{DB: db}
}

// Return stored shipments ordered by shipment ID. A limit of 0 means
// no limit.
func (s *SQLShipmentRepository) ListShipments(ctx context.Context, limit, offset int) (_ []*domain.Shipment, err error) {
	defer obs.Time(ctx, "shipments.repo.List")(&err)

	if s.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	q := fmt.Sprintf(`
	SELECT %s
    FROM shipments
    ORDER BY shipment_id`, shipmentColumnList())

	var args []any
	switch {
	case limit > 0:
		q += " LIMIT $1 OFFSET $2"
		args = append(args, limit, max(offset, 0))
	case offset > 0:
		q += " OFFSET $1"
		args = append(args, offset)
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
func (s *SQLShipmentRepository) CountShipments(ctx context.Context) (int, error) {
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
func (s *SQLShipmentRepository) InsertShipments(ctx context.Context, shipments []*domain.Shipment) (err error) {
	defer obs.Time(ctx, "shipments.repo.Insert")(&err)

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

	placeholders := make([]string, len(shipmentColumns))
	for i := range shipmentColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	updates := make([]string, 0, len(shipmentColumns)-1)
	for _, col := range shipmentColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	q := fmt.Sprintf(`
	INSERT INTO shipments (%s)
    VALUES (%s)
	ON CONFLICT (shipment_id) DO UPDATE
	SET %s;
	`, shipmentColumnList(), strings.Join(placeholders, ", "), strings.Join(updates, ", "))

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

package ports

import (
	"context"

	"customs-analytics-service/internal/domain"
)

// Port: a boundary for reading and writing Shipment records.
type ShipmentRepository interface {
	// Retrieve shipments ordered by shipment ID. A limit of 0 means no limit.
	ListShipments(ctx context.Context, limit, offset int) ([]*domain.Shipment, error)
	// Count all stored shipments.
	CountShipments(ctx context.Context) (int, error)
	// Insert or update shipments keyed by shipment ID.
	InsertShipments(ctx context.Context, shipments []*domain.Shipment) error
}

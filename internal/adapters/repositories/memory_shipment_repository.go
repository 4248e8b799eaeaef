package repositories

import (
	"context"
	"customs-analytics-service/internal/domain"
	"slices"
	"sync"
)

// MemoryShipmentRepository keeps shipments in memory. It backs
// CSV-only analysis runs where no database is configured; the SQL
// repositories are the durable implementations.
type MemoryShipmentRepository struct {
	mu        sync.RWMutex
	shipments map[string]domain.Shipment
}

func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{shipments: make(map[string]domain.Shipment)}
}

func (r *MemoryShipmentRepository) ListShipments(ctx context.Context, limit, offset int) ([]*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.shipments))
	for id := range r.shipments {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	if offset > len(ids) {
		offset = len(ids)
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*domain.Shipment, 0, len(ids))
	for _, id := range ids {
		s := r.shipments[id]
		out = append(out, &s)
	}
	return out, nil
}

func (r *MemoryShipmentRepository) CountShipments(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shipments), nil
}

func (r *MemoryShipmentRepository) InsertShipments(ctx context.Context, shipments []*domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range shipments {
		r.shipments[s.ShipmentID] = *s
	}
	return nil
}

package repositories

import (
	"context"
	"customs-analytics-service/internal/domain"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// The pool must stay on one connection or each new connection gets
	// its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func storedShipment(id string) *domain.Shipment {
	overall := 3.9
	return &domain.Shipment{
		ShipmentID:           id,
		ShipmentDate:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EstimatedArrivalDate: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		ActualArrivalDate:    time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC),
		OriginCountry:        "China",
		DestinationCountry:   "Germany",
		TransportMode:        "Sea",
		CarrierName:          "Maersk",
		RouteCode:            "CN-DE",
		CommodityType:        "Electronics",
		TariffCategory:       "A",
		InspectionType:       "Random",
		DocumentStatus:       "Complete",
		DelayReason:          "Customs hold",
		DeclaredValueUSD:     1000,
		WeightKg:             100,
		ComplianceScore:      0.9,
		PriorOffenseCount:    1,
		RouteRiskIndex:       0.2,
		CustomsDelayDays:     2,
		OriginLPI:            domain.LPIProfile{Overall: &overall},
	}
}

func TestSqliteShipmentRepositoryRoundTrip(t *testing.T) {
	repo := NewSqliteShipmentRepository(openTestDB(t))
	ctx := context.Background()

	err := repo.InsertShipments(ctx, []*domain.Shipment{
		storedShipment("SHP-002"),
		storedShipment("SHP-001"),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.ListShipments(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d shipments, want 2", len(got))
	}
	if got[0].ShipmentID != "SHP-001" || got[1].ShipmentID != "SHP-002" {
		t.Errorf("order = %s, %s, want ascending by ID", got[0].ShipmentID, got[1].ShipmentID)
	}

	s := got[0]
	want := storedShipment("SHP-001")
	if !s.ShipmentDate.Equal(want.ShipmentDate) {
		t.Errorf("shipment date = %v, want %v", s.ShipmentDate, want.ShipmentDate)
	}
	if s.DeclaredValueUSD != want.DeclaredValueUSD || s.ComplianceScore != want.ComplianceScore {
		t.Errorf("numerics did not round-trip: %+v", s)
	}
	if s.PriorOffenseCount != 1 {
		t.Errorf("prior offense count = %d, want 1", s.PriorOffenseCount)
	}
	if s.OriginLPI.Overall == nil || *s.OriginLPI.Overall != 3.9 {
		t.Errorf("origin lpi overall = %v, want 3.9", s.OriginLPI.Overall)
	}
	if s.DestinationLPI.Overall != nil {
		t.Errorf("destination lpi overall should stay nil")
	}
	if s.RouteLPIAverage != nil {
		t.Errorf("route lpi average should stay nil")
	}

	n, err := repo.CountShipments(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestSqliteShipmentRepositoryUpsert(t *testing.T) {
	repo := NewSqliteShipmentRepository(openTestDB(t))
	ctx := context.Background()

	first := storedShipment("SHP-001")
	if err := repo.InsertShipments(ctx, []*domain.Shipment{first}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated := storedShipment("SHP-001")
	updated.CustomsDelayDays = 9
	updated.DelayReason = "Port congestion"
	if err := repo.InsertShipments(ctx, []*domain.Shipment{updated}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	n, err := repo.CountShipments(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1 after upsert", n)
	}

	got, err := repo.ListShipments(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].CustomsDelayDays != 9 || got[0].DelayReason != "Port congestion" {
		t.Errorf("upsert did not replace fields: %+v", got[0])
	}
}

func TestSqliteShipmentRepositoryPaging(t *testing.T) {
	repo := NewSqliteShipmentRepository(openTestDB(t))
	ctx := context.Background()

	err := repo.InsertShipments(ctx, []*domain.Shipment{
		storedShipment("SHP-001"),
		storedShipment("SHP-002"),
		storedShipment("SHP-003"),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	page, err := repo.ListShipments(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list limit=1 offset=1: %v", err)
	}
	if len(page) != 1 || page[0].ShipmentID != "SHP-002" {
		t.Errorf("page = %v, want just SHP-002", page)
	}

	tail, err := repo.ListShipments(ctx, 0, 2)
	if err != nil {
		t.Fatalf("list offset=2: %v", err)
	}
	if len(tail) != 1 || tail[0].ShipmentID != "SHP-003" {
		t.Errorf("tail = %v, want just SHP-003", tail)
	}
}

func TestSqliteShipmentRepositoryRejectsEmptyID(t *testing.T) {
	repo := NewSqliteShipmentRepository(openTestDB(t))

	err := repo.InsertShipments(context.Background(), []*domain.Shipment{storedShipment("  ")})
	if err == nil {
		t.Fatalf("want error for empty shipment ID")
	}
}

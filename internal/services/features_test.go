package services

import (
	"customs-analytics-service/internal/domain"
	"math"
	"testing"
	"time"
)

func testShipments() []*domain.Shipment {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return []*domain.Shipment{
		{
			ShipmentID:           "SHP-001",
			ShipmentDate:         day(2024, time.January, 1),
			EstimatedArrivalDate: day(2024, time.January, 11),
			ActualArrivalDate:    day(2024, time.January, 12),
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
			PriorOffenseCount:    0,
			RouteRiskIndex:       0.2,
			CustomsDelayDays:     1,
		},
		{
			ShipmentID:           "SHP-002",
			ShipmentDate:         day(2024, time.February, 1),
			EstimatedArrivalDate: day(2024, time.February, 9),
			ActualArrivalDate:    day(2024, time.February, 13),
			OriginCountry:        "USA",
			DestinationCountry:   "Germany",
			TransportMode:        "Air",
			CarrierName:          "DHL",
			RouteCode:            "US-DE",
			CommodityType:        "Apparel",
			TariffCategory:       "B",
			InspectionType:       "Full",
			DocumentStatus:       "Missing",
			DeclaredValueUSD:     2000,
			WeightKg:             50,
			ComplianceScore:      0.5,
			PriorOffenseCount:    2,
			RouteRiskIndex:       0.7,
			CustomsDelayDays:     3,
		},
		{
			ShipmentID:           "SHP-003",
			ShipmentDate:         day(2024, time.March, 4),
			EstimatedArrivalDate: day(2024, time.March, 14),
			ActualArrivalDate:    day(2024, time.March, 14),
			OriginCountry:        "China",
			DestinationCountry:   "Germany",
			TransportMode:        "Sea",
			CarrierName:          "Maersk",
			RouteCode:            "CN-DE",
			CommodityType:        "Electronics",
			TariffCategory:       "A",
			InspectionType:       "None",
			DocumentStatus:       "Complete",
			DeclaredValueUSD:     500,
			WeightKg:             200,
			ComplianceScore:      0.8,
			PriorOffenseCount:    1,
			RouteRiskIndex:       0, // out of range, risk level unknown
			CustomsDelayDays:     0,
		},
	}
}

func deriveAll(t *testing.T, shipments []*domain.Shipment) []domain.FeatureRow {
	t.Helper()
	rows := make([]domain.FeatureRow, 0, len(shipments))
	for _, s := range shipments {
		row, err := domain.DeriveFeatures(s)
		if err != nil {
			t.Fatalf("derive features %s: %v", s.ShipmentID, err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestBuildMatrix(t *testing.T) {
	shipments := testShipments()
	rows := deriveAll(t, shipments)

	m, encodings, err := BuildMatrix(shipments, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Rows != 3 {
		t.Fatalf("rows = %d, want 3", m.Rows)
	}
	for _, col := range m.Columns {
		if len(m.Data[col]) != m.Rows {
			t.Fatalf("column %s has %d values, want %d", col, len(m.Data[col]), m.Rows)
		}
	}

	// No enrichment ran, so no LPI columns.
	for _, col := range m.Columns {
		if col == ColOriginLPIOverall || col == ColRouteLPIAverage {
			t.Fatalf("unexpected LPI column %s without enrichment", col)
		}
	}

	// Label codes are assigned in sorted value order.
	if enc := encodings[ColOriginCountry]; enc["China"] != 0 || enc["USA"] != 1 {
		t.Errorf("origin encoding = %v, want China=0 USA=1", enc)
	}
	origin := m.Data[ColOriginCountry]
	if origin[0] != 0 || origin[1] != 1 || origin[2] != 0 {
		t.Errorf("encoded origins = %v, want [0 1 0]", origin)
	}

	if delays := m.Data[ColArrivalDelayDays]; delays[0] != 1 || delays[1] != 4 || delays[2] != 0 {
		t.Errorf("arrival delays = %v, want [1 4 0]", delays)
	}

	if issues := m.Data[ColDocumentIssue]; issues[0] != 0 || issues[1] != 1 {
		t.Errorf("document issues = %v, want [0 1 ...]", issues)
	}
	if prior := m.Data[ColHasPriorOffense]; prior[0] != 0 || prior[1] != 1 || prior[2] != 1 {
		t.Errorf("has prior offense = %v, want [0 1 1]", prior)
	}

	risk := m.Data[ColRiskLevel]
	if risk[0] != 1 || risk[1] != 3 {
		t.Errorf("risk levels = %v, want low=1 and high=3", risk[:2])
	}
	if !math.IsNaN(risk[2]) {
		t.Errorf("risk level for unknown = %v, want NaN", risk[2])
	}
}

func TestBuildMatrixLPIColumns(t *testing.T) {
	shipments := testShipments()
	overall := 3.9
	shipments[0].OriginLPI.Overall = &overall

	rows := deriveAll(t, shipments)
	m, _, err := BuildMatrix(shipments, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	col, ok := m.Data[ColOriginLPIOverall]
	if !ok {
		t.Fatalf("expected %s column once a value is present", ColOriginLPIOverall)
	}
	if col[0] != 3.9 {
		t.Errorf("col[0] = %v, want 3.9", col[0])
	}
	if !math.IsNaN(col[1]) || !math.IsNaN(col[2]) {
		t.Errorf("unenriched rows = %v, want NaN", col[1:])
	}

	// Only the column with data appears.
	if _, ok := m.Data[ColDestinationLPIOverall]; ok {
		t.Errorf("unexpected %s column", ColDestinationLPIOverall)
	}
}

func TestBuildMatrixLengthMismatch(t *testing.T) {
	shipments := testShipments()
	rows := deriveAll(t, shipments)

	if _, _, err := BuildMatrix(shipments, rows[:2]); err == nil {
		t.Fatalf("expected error on mismatched lengths")
	}
}

func TestScaleColumns(t *testing.T) {
	m := Matrix{
		Columns: []string{"A", "B"},
		Data: map[string][]float64{
			"A": {2, 4, 6},
			"B": {5, 5, 5},
		},
		Rows: 3,
	}

	flagged, skipped := ScaleColumns(m, []string{"A", "B", "Missing"})

	want := 1.224744871391589
	a := m.Data["A"]
	if !almostEqual(a[0], -want) || !almostEqual(a[1], 0) || !almostEqual(a[2], want) {
		t.Errorf("scaled A = %v, want [-%v 0 %v]", a, want, want)
	}

	for i, v := range m.Data["B"] {
		if v != 0 {
			t.Errorf("zero-variance B[%d] = %v, want 0", i, v)
		}
	}

	if len(flagged) != 1 || flagged[0] != "B" {
		t.Errorf("flagged = %v, want [B]", flagged)
	}
	if len(skipped) != 1 || skipped[0] != "Missing" {
		t.Errorf("skipped = %v, want [Missing]", skipped)
	}
}

func TestScaleColumnsKeepsMissing(t *testing.T) {
	m := Matrix{
		Columns: []string{"A"},
		Data:    map[string][]float64{"A": {1, math.NaN(), 3}},
		Rows:    3,
	}

	ScaleColumns(m, []string{"A"})

	a := m.Data["A"]
	if !math.IsNaN(a[1]) {
		t.Fatalf("missing value was imputed: %v", a[1])
	}
	if !almostEqual(a[0], -1) || !almostEqual(a[2], 1) {
		t.Errorf("scaled = %v, want [-1 NaN 1]", a)
	}
}

func TestBuildFeatureMetadata(t *testing.T) {
	encodings := map[string]map[string]int{
		ColOriginCountry: {"China": 0, "USA": 1},
	}
	scaled := []string{ColDeclaredValueUSD, ColCustomsDelayDays}

	meta := BuildFeatureMetadata(scaled, encodings, []string{ColCustomsDelayDays, ColRouteCode})

	if len(meta.NumericFeatures) != 1 || meta.NumericFeatures[0] != ColDeclaredValueUSD {
		t.Errorf("numeric features = %v", meta.NumericFeatures)
	}
	for _, c := range meta.CategoricalFeatures {
		if c == ColRouteCode {
			t.Errorf("excluded column %s still listed", ColRouteCode)
		}
	}
	if meta.RegressionTarget != ColArrivalDelayDays {
		t.Errorf("regression target = %q", meta.RegressionTarget)
	}
	if meta.ClassificationTarget != ColRiskLevel {
		t.Errorf("classification target = %q", meta.ClassificationTarget)
	}
	if meta.LabelEncodings[ColOriginCountry]["USA"] != 1 {
		t.Errorf("encodings not carried through: %v", meta.LabelEncodings)
	}
}

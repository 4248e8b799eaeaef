package ingest

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const csvHeader = "Shipment_ID,Shipment_Date,Estimated_Arrival_Date,Actual_Arrival_Date," +
	"Origin_Country,Destination_Country,Transport_Mode,Carrier_Name,Route_Code," +
	"Commodity_Type,Tariff_Category,Inspection_Type,Document_Status,Delay_Reason," +
	"Declared_Value_USD,Weight_kg,Compliance_Score,Prior_Offense_Count,Route_Risk_Index,Customs_Delay_Days"

func validRow(id string) string {
	return fmt.Sprintf("%s,2024-01-01,2024-01-10,2024-01-12,China,Germany,Sea,Maersk,CN-DE,"+
		"Electronics,A,Random,Complete,Customs hold,1000,100,0.9,0,0.2,1", id)
}

func loadString(t *testing.T, csv string) *LoadResult {
	t.Helper()
	res, err := NewLoader().LoadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestLoadCSV(t *testing.T) {
	csv := strings.Join([]string{csvHeader, validRow("SHP-001"), validRow("SHP-002")}, "\n")

	res := loadString(t, csv)

	if res.Loaded != 2 || res.Skipped != 0 {
		t.Fatalf("loaded = %d skipped = %d, want 2 and 0", res.Loaded, res.Skipped)
	}

	s := res.Shipments[0]
	if s.ShipmentID != "SHP-001" {
		t.Errorf("shipment id = %q", s.ShipmentID)
	}
	if s.ShipmentDate != time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("shipment date = %v", s.ShipmentDate)
	}
	if s.DeclaredValueUSD != 1000 || s.WeightKg != 100 {
		t.Errorf("numerics = %v and %v", s.DeclaredValueUSD, s.WeightKg)
	}
	if s.ComplianceScore != 0.9 || s.PriorOffenseCount != 0 {
		t.Errorf("compliance = %v offenses = %d", s.ComplianceScore, s.PriorOffenseCount)
	}
	if s.DelayReason != "Customs hold" {
		t.Errorf("delay reason = %q", s.DelayReason)
	}
	if s.OriginLPI.Overall != nil {
		t.Errorf("unexpected LPI value without LPI columns")
	}
}

func TestLoadCSVAcceptsDatetimeLayout(t *testing.T) {
	row := "SHP-001,2024-01-01 08:30:00,2024-01-10,2024-01-12,China,Germany,Sea,Maersk,CN-DE," +
		"Electronics,A,Random,Complete,,1000,100,0.9,0,0.2,1"
	res := loadString(t, csvHeader+"\n"+row)

	if res.Loaded != 1 {
		t.Fatalf("loaded = %d, reasons = %v", res.Loaded, res.Reasons)
	}
	got := res.Shipments[0].ShipmentDate
	if got.Hour() != 8 || got.Minute() != 30 {
		t.Errorf("shipment date = %v, want time of day kept", got)
	}
}

func TestLoadCSVSkipsInvalidRows(t *testing.T) {
	badDate := strings.Replace(validRow("SHP-002"), "2024-01-01", "not-a-date", 1)
	badScore := strings.Replace(validRow("SHP-003"), ",0.9,", ",1.5,", 1)
	badFloat := strings.Replace(validRow("SHP-004"), ",1000,", ",abc,", 1)
	emptyID := validRow("")

	csv := strings.Join([]string{csvHeader, validRow("SHP-001"), badDate, badScore, badFloat, emptyID}, "\n")
	res := loadString(t, csv)

	if res.Loaded != 1 {
		t.Errorf("loaded = %d, want 1", res.Loaded)
	}
	if res.Skipped != 4 {
		t.Errorf("skipped = %d, want 4: %v", res.Skipped, res.Reasons)
	}
	if len(res.Reasons) != 4 {
		t.Fatalf("reasons = %v, want 4 entries", res.Reasons)
	}
	// Rows are reported by file line, header included.
	if !strings.Contains(res.Reasons[0], "row 3") {
		t.Errorf("first reason = %q, want row 3", res.Reasons[0])
	}
}

func TestLoadCSVSkipsDuplicates(t *testing.T) {
	csv := strings.Join([]string{csvHeader, validRow("SHP-001"), validRow("SHP-001")}, "\n")
	res := loadString(t, csv)

	if res.Loaded != 1 || res.Skipped != 1 {
		t.Fatalf("loaded = %d skipped = %d, want 1 and 1", res.Loaded, res.Skipped)
	}
	if !strings.Contains(res.Reasons[0], "duplicate") {
		t.Errorf("reason = %q, want duplicate", res.Reasons[0])
	}
}

func TestLoadCSVDedupAcrossLoads(t *testing.T) {
	l := NewLoader()

	first, err := l.LoadCSV(strings.NewReader(csvHeader + "\n" + validRow("SHP-001")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Loaded != 1 {
		t.Fatalf("first load = %d, want 1", first.Loaded)
	}

	second, err := l.LoadCSV(strings.NewReader(csvHeader + "\n" + validRow("SHP-001")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Loaded != 0 || second.Skipped != 1 {
		t.Fatalf("second load = %+v, want the row deduplicated", second)
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	header := strings.Replace(csvHeader, "Route_Code,", "", 1)
	row := "SHP-001,2024-01-01,2024-01-10,2024-01-12,China,Germany,Sea,Maersk," +
		"Electronics,A,Random,Complete,,1000,100,0.9,0,0.2,1"

	_, err := NewLoader().LoadCSV(strings.NewReader(header + "\n" + row))
	if err == nil || !strings.Contains(err.Error(), "Route_Code") {
		t.Fatalf("err = %v, want missing Route_Code", err)
	}
}

func TestLoadCSVOptionalLPIColumns(t *testing.T) {
	header := csvHeader + ",Origin_LPI_Overall"
	withValue := validRow("SHP-001") + ",3.9"
	withoutValue := validRow("SHP-002") + ","

	res := loadString(t, strings.Join([]string{header, withValue, withoutValue}, "\n"))

	if res.Loaded != 2 {
		t.Fatalf("loaded = %d, reasons = %v", res.Loaded, res.Reasons)
	}
	if v := res.Shipments[0].OriginLPI.Overall; v == nil || *v != 3.9 {
		t.Errorf("origin lpi overall = %v, want 3.9", v)
	}
	if res.Shipments[1].OriginLPI.Overall != nil {
		t.Errorf("empty LPI cell should stay nil")
	}
}

func TestDeduper(t *testing.T) {
	d := NewDeduper(time.Hour, 10)

	if !d.ShouldProcess("SHP-001") {
		t.Fatalf("first sighting should process")
	}
	if d.ShouldProcess("SHP-001") {
		t.Fatalf("second sighting within TTL should not process")
	}
	if !d.ShouldProcess("SHP-002") {
		t.Fatalf("different ID should process")
	}
	if !d.ShouldProcess("") {
		t.Fatalf("empty ID always passes")
	}
}

func TestDeduperExpiry(t *testing.T) {
	d := NewDeduper(time.Nanosecond, 10)

	if !d.ShouldProcess("SHP-001") {
		t.Fatalf("first sighting should process")
	}
	time.Sleep(time.Millisecond)
	if !d.ShouldProcess("SHP-001") {
		t.Fatalf("expired entry should process again")
	}
}

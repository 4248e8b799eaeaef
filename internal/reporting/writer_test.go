package reporting

import (
	"customs-analytics-service/internal/domain"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func reportSnapshot() *domain.AnalysisSnapshot {
	return &domain.AnalysisSnapshot{
		RunID:       "run-20240101-120000",
		StartedAt:   time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
		DurationMS:  1500,
		DatasetRows: 6,
		ColumnStats: []domain.ColumnStats{
			{Column: "Arrival_Delay_Days", Count: 6, Mean: 3.5, StdDev: 1.87, Min: 1, Max: 6, Skewness: 0},
		},
		DelayHistogram: domain.DelayHistogram{
			Column: "Arrival_Delay_Days",
			Bins:   []domain.HistogramBin{{Low: 1, High: 6, Count: 6}},
		},
		RiskBalance: []domain.RiskShare{
			{Level: domain.RiskLow, Label: "Low", Count: 3, Share: 0.5},
			{Level: domain.RiskHigh, Label: "High", Count: 3, Share: 0.5},
		},
		TopCorrelations: []domain.Correlation{{Feature: "Customs_Delay_Days", R: 1}},
		Leaks: []domain.LeakFinding{
			{Feature: "Customs_Delay_Days", Correlation: 1, Threshold: 0.95},
		},
		ExcludedFeatures: []string{"Customs_Delay_Days"},
		RouteRankings: []domain.RouteSummary{
			{RouteCode: "CN-DE", ShipmentCount: 3, AvgDelayDays: 2, RiskRate: 1, Score: 0.1, Rank: 1},
			{RouteCode: "US-DE", ShipmentCount: 3, AvgDelayDays: 5, RiskRate: 3, Score: 1, Rank: 2},
		},
		DelayTerms: []domain.TermWeight{{Term: "customs", Weight: 2.5, Documents: 2}},
		FeatureMetadata: domain.FeatureMetadata{
			NumericFeatures:  []string{"Declared_Value_USD"},
			RegressionTarget: "Arrival_Delay_Days",
		},
		Warnings: []string{"possible target leakage: Customs_Delay_Days correlates 1.000 with Arrival_Delay_Days, drop it before modeling"},
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "reports"))

	if err := w.WriteAll(reportSnapshot()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir, ReportFile))
	if err != nil {
		t.Fatalf("read report.json: %v", err)
	}
	var got domain.AnalysisSnapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("parse report.json: %v", err)
	}
	if got.RunID != "run-20240101-120000" || got.DatasetRows != 6 {
		t.Errorf("report round-trip = %+v", got)
	}
	if len(got.Leaks) != 1 || got.Leaks[0].Feature != "Customs_Delay_Days" {
		t.Errorf("leaks = %v", got.Leaks)
	}

	f, err := os.Open(filepath.Join(w.Dir, RouteRankingsFile))
	if err != nil {
		t.Fatalf("open rankings csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse rankings csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "rank" || rows[1][1] != "CN-DE" || rows[2][1] != "US-DE" {
		t.Errorf("csv content = %v", rows)
	}

	meta, err := os.ReadFile(filepath.Join(w.Dir, FeatureMetadataFile))
	if err != nil {
		t.Fatalf("read feature metadata: %v", err)
	}
	var gotMeta domain.FeatureMetadata
	if err := json.Unmarshal(meta, &gotMeta); err != nil {
		t.Fatalf("parse feature metadata: %v", err)
	}
	if gotMeta.RegressionTarget != "Arrival_Delay_Days" {
		t.Errorf("feature metadata = %+v", gotMeta)
	}

	summary, err := os.ReadFile(filepath.Join(w.Dir, SummaryFile))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{
		"Analysis run run-20240101-120000",
		"Dataset rows: 6",
		"Delay distribution (Arrival_Delay_Days)",
		"Customs_Delay_Days",
		"CN-DE",
		"Warnings",
	} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q", want)
		}
	}

	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestWriteAllNilSnapshot(t *testing.T) {
	w := NewWriter(t.TempDir())
	if err := w.WriteAll(nil); err == nil {
		t.Fatalf("want error for nil snapshot")
	}
}

func TestWriteAllNoLeaks(t *testing.T) {
	w := NewWriter(t.TempDir())
	snap := reportSnapshot()
	snap.Leaks = nil
	snap.Warnings = nil

	if err := w.WriteAll(snap); err != nil {
		t.Fatalf("write all: %v", err)
	}

	summary, err := os.ReadFile(filepath.Join(w.Dir, SummaryFile))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(summary), "none") {
		t.Errorf("summary should report no leakage findings")
	}
	if strings.Contains(string(summary), "Warnings") {
		t.Errorf("summary should omit the warnings section")
	}
}

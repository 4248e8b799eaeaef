package services

import (
	"testing"
)

func TestDetectLeaks(t *testing.T) {
	m := Matrix{
		Columns: []string{"Target", "Leak", "Benign"},
		Data: map[string][]float64{
			"Target": {1, 2, 3, 4},
			"Leak":   {2, 4, 6, 8},
			"Benign": {1, -1, 2, 0},
		},
		Rows: 4,
	}
	cm := Correlations(m)

	leaks, excluded := DetectLeaks(cm, "Target", 0.95, nil)

	if len(leaks) != 1 {
		t.Fatalf("expected 1 leak, got %d: %v", len(leaks), leaks)
	}
	l := leaks[0]
	if l.Feature != "Leak" {
		t.Errorf("leak feature = %q, want Leak", l.Feature)
	}
	if !almostEqual(l.Correlation, 1) {
		t.Errorf("leak correlation = %v, want 1", l.Correlation)
	}
	if l.Threshold != 0.95 {
		t.Errorf("leak threshold = %v, want 0.95", l.Threshold)
	}

	if len(excluded) != 1 || excluded[0] != "Leak" {
		t.Errorf("excluded = %v, want [Leak]", excluded)
	}
}

func TestDetectLeaksNegativeCorrelation(t *testing.T) {
	m := Matrix{
		Columns: []string{"Target", "Inverse"},
		Data: map[string][]float64{
			"Target":  {1, 2, 3, 4},
			"Inverse": {8, 6, 4, 2},
		},
		Rows: 4,
	}
	cm := Correlations(m)

	leaks, _ := DetectLeaks(cm, "Target", 0.95, nil)
	if len(leaks) != 1 || leaks[0].Feature != "Inverse" {
		t.Fatalf("expected Inverse flagged, got %v", leaks)
	}
	if leaks[0].Correlation >= 0 {
		t.Errorf("correlation = %v, want negative", leaks[0].Correlation)
	}
}

func TestDetectLeaksMergesConfiguredExcludes(t *testing.T) {
	m := Matrix{
		Columns: []string{"Target", "Leak"},
		Data: map[string][]float64{
			"Target": {1, 2, 3, 4},
			"Leak":   {1, 2, 3, 4},
		},
		Rows: 4,
	}
	cm := Correlations(m)

	_, excluded := DetectLeaks(cm, "Target", 0.95, []string{"Manual", "Leak"})

	want := []string{"Leak", "Manual"}
	if len(excluded) != len(want) {
		t.Fatalf("excluded = %v, want %v", excluded, want)
	}
	for i := range want {
		if excluded[i] != want[i] {
			t.Fatalf("excluded = %v, want %v", excluded, want)
		}
	}
}

func TestDetectLeaksBelowThreshold(t *testing.T) {
	m := Matrix{
		Columns: []string{"Target", "Weak"},
		Data: map[string][]float64{
			"Target": {1, 2, 3, 4},
			"Weak":   {1, 3, 2, 4},
		},
		Rows: 4,
	}
	cm := Correlations(m)

	leaks, excluded := DetectLeaks(cm, "Target", 0.95, nil)
	if len(leaks) != 0 {
		t.Fatalf("expected no leaks, got %v", leaks)
	}
	if len(excluded) != 0 {
		t.Fatalf("expected no exclusions, got %v", excluded)
	}
}

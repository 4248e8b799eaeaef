package services

import (
	"math"
	"testing"
)

func testMatrix() Matrix {
	return Matrix{
		Columns: []string{"X", "Y", "Z", "C"},
		Data: map[string][]float64{
			"X": {1, 2, 3, 4},
			"Y": {2, 4, 6, 8},
			"Z": {-1, -2, -3, -4},
			"C": {7, 7, 7, 7},
		},
		Rows: 4,
	}
}

func TestCorrelations(t *testing.T) {
	cm := Correlations(testMatrix())

	if len(cm.Columns) != 4 || len(cm.Values) != 4 {
		t.Fatalf("matrix shape = %dx%d, want 4x4", len(cm.Columns), len(cm.Values))
	}

	r := func(a, b string) float64 {
		return cm.Values[columnIndex(cm.Columns, a)][columnIndex(cm.Columns, b)]
	}

	if !almostEqual(r("X", "X"), 1) {
		t.Errorf("r(X,X) = %v, want 1", r("X", "X"))
	}
	if !almostEqual(r("X", "Y"), 1) {
		t.Errorf("r(X,Y) = %v, want 1", r("X", "Y"))
	}
	if !almostEqual(r("X", "Z"), -1) {
		t.Errorf("r(X,Z) = %v, want -1", r("X", "Z"))
	}
	if r("X", "Y") != r("Y", "X") {
		t.Errorf("matrix not symmetric: %v vs %v", r("X", "Y"), r("Y", "X"))
	}
}

func TestCorrelationsConstantColumn(t *testing.T) {
	cm := Correlations(testMatrix())

	if len(cm.Constant) != 1 || cm.Constant[0] != "C" {
		t.Fatalf("constant columns = %v, want [C]", cm.Constant)
	}

	ci := columnIndex(cm.Columns, "C")
	for j := range cm.Columns {
		if cm.Values[ci][j] != 0 {
			t.Errorf("r(C,%s) = %v, want 0", cm.Columns[j], cm.Values[ci][j])
		}
	}
}

func TestCorrelationsPairwiseMissing(t *testing.T) {
	m := Matrix{
		Columns: []string{"X", "Y"},
		Data: map[string][]float64{
			// The fifth row would wreck the correlation, but Y is
			// missing there, so the pair is excluded.
			"X": {1, 2, 3, 4, 100},
			"Y": {2, 4, 6, 8, math.NaN()},
		},
		Rows: 5,
	}

	cm := Correlations(m)
	if got := cm.Values[0][1]; !almostEqual(got, 1) {
		t.Fatalf("r(X,Y) = %v, want 1", got)
	}
}

func TestTopCorrelations(t *testing.T) {
	cm := Correlations(testMatrix())

	top := TopCorrelations(cm, "X", 0)
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].Feature != "Y" || !almostEqual(top[0].R, 1) {
		t.Errorf("top[0] = %+v, want Y at 1", top[0])
	}
	if top[1].Feature != "C" || top[1].R != 0 {
		t.Errorf("top[1] = %+v, want C at 0", top[1])
	}
	if top[2].Feature != "Z" || !almostEqual(top[2].R, -1) {
		t.Errorf("top[2] = %+v, want Z at -1", top[2])
	}

	limited := TopCorrelations(cm, "X", 2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 entries with limit, got %d", len(limited))
	}

	if got := TopCorrelations(cm, "missing", 5); got != nil {
		t.Fatalf("expected nil for unknown target, got %v", got)
	}
}

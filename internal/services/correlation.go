package services

import (
	"customs-analytics-service/internal/domain"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Correlations computes the Pearson correlation matrix over every
// column of the feature matrix. Missing values are excluded pairwise:
// each coefficient uses only the rows where both columns are present.
// Zero-variance columns correlate as zero against everything, including
// themselves, and are listed in Constant.
func Correlations(m Matrix) domain.CorrelationMatrix {
	cm := domain.CorrelationMatrix{
		Columns: append([]string(nil), m.Columns...),
		Values:  make([][]float64, len(m.Columns)),
	}
	for i := range cm.Values {
		cm.Values[i] = make([]float64, len(m.Columns))
	}

	constant := make(map[string]bool, len(m.Columns))
	for _, c := range m.Columns {
		if isConstant(m.Data[c]) {
			constant[c] = true
			cm.Constant = append(cm.Constant, c)
		}
	}
	sort.Strings(cm.Constant)

	for i, ci := range m.Columns {
		for j := i; j < len(m.Columns); j++ {
			cj := m.Columns[j]

			var r float64
			switch {
			case constant[ci] || constant[cj]:
				r = 0
			case i == j:
				r = 1
			default:
				r = pairwiseCorrelation(m.Data[ci], m.Data[cj])
			}

			cm.Values[i][j] = r
			cm.Values[j][i] = r
		}
	}

	return cm
}

// TopCorrelations lists every feature's correlation with the target
// column, strongest first. Ties break on the feature name so the order
// is deterministic.
func TopCorrelations(cm domain.CorrelationMatrix, target string, limit int) []domain.Correlation {
	ti := columnIndex(cm.Columns, target)
	if ti < 0 {
		return nil
	}

	out := make([]domain.Correlation, 0, len(cm.Columns)-1)
	for i, c := range cm.Columns {
		if c == target {
			continue
		}
		out = append(out, domain.Correlation{Feature: c, R: cm.Values[ti][i]})
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].R != out[b].R {
			return out[a].R > out[b].R
		}
		return out[a].Feature < out[b].Feature
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// pairwiseCorrelation computes Pearson's r over the rows where both
// columns have a value. Fewer than two shared rows, or zero variance on
// either side of the shared rows, yields zero.
func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return 0
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// isConstant reports whether the non-missing values of a column are all
// equal (or entirely missing).
func isConstant(values []float64) bool {
	first := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(first) {
			first = v
			continue
		}
		if v != first {
			return false
		}
	}
	return true
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

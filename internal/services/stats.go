package services

import (
	"customs-analytics-service/internal/domain"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Describe computes descriptive statistics for one numeric column.
//
// NaN entries are treated as missing: they are excluded from every
// moment and counted in Missing, never imputed. Columns with fewer
// than three values or zero variance report a skewness of zero and
// are marked Degenerate.
func Describe(column string, values []float64) domain.ColumnStats {
	obs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			obs = append(obs, v)
		}
	}

	cs := domain.ColumnStats{
		Column:  column,
		Count:   len(obs),
		Missing: len(values) - len(obs),
	}

	if len(obs) == 0 {
		cs.Degenerate = true
		return cs
	}

	cs.Min = obs[0]
	cs.Max = obs[0]
	for _, v := range obs {
		if v < cs.Min {
			cs.Min = v
		}
		if v > cs.Max {
			cs.Max = v
		}
	}

	cs.Mean = stat.Mean(obs, nil)
	if len(obs) > 1 {
		cs.StdDev = stat.StdDev(obs, nil)
	}

	// Sample-adjusted Fisher-Pearson skewness is undefined below three
	// observations and for constant columns.
	if len(obs) < 3 || cs.StdDev == 0 {
		cs.Degenerate = true
		return cs
	}
	cs.Skewness = stat.Skew(obs, nil)

	return cs
}

// Histogram bins values into an equal-width histogram over [min, max].
// NaN entries are skipped. The final bin is closed on the right so the
// maximum lands in it instead of overflowing.
func Histogram(column string, values []float64, bins int) domain.DelayHistogram {
	h := domain.DelayHistogram{Column: column}
	if bins <= 0 {
		return h
	}

	obs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			obs = append(obs, v)
		}
	}
	if len(obs) == 0 {
		return h
	}

	lo, hi := obs[0], obs[0]
	for _, v := range obs {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		h.Bins = []domain.HistogramBin{{Low: lo, High: hi, Count: len(obs)}}
		return h
	}

	width := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, v := range obs {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	h.Bins = make([]domain.HistogramBin, 0, bins)
	for i := 0; i < bins; i++ {
		high := lo + float64(i+1)*width
		if i == bins-1 {
			high = hi
		}
		h.Bins = append(h.Bins, domain.HistogramBin{
			Low:   lo + float64(i)*width,
			High:  high,
			Count: counts[i],
		})
	}

	return h
}

// ClassBalance computes the share of shipments per risk level,
// including the unknown level so unassessed records stay visible.
func ClassBalance(levels []domain.RiskLevel) []domain.RiskShare {
	counts := make(map[domain.RiskLevel]int, 4)
	for _, l := range levels {
		counts[l]++
	}

	all := append([]domain.RiskLevel{domain.RiskUnknown}, domain.RiskLevels()...)
	out := make([]domain.RiskShare, 0, len(all))
	for _, l := range all {
		share := 0.0
		if len(levels) > 0 {
			share = float64(counts[l]) / float64(len(levels))
		}
		out = append(out, domain.RiskShare{
			Level: l,
			Label: l.String(),
			Count: counts[l],
			Share: share,
		})
	}

	return out
}

package services

import (
	"customs-analytics-service/internal/domain"
	"math"
	"sort"
)

// DetectLeaks flags features whose absolute correlation with the target
// meets the threshold. Such features restate the target rather than
// predict it, so they must not reach a model. The returned exclusion
// list is the union of flagged features and the configured excludes,
// deduplicated and sorted.
func DetectLeaks(cm domain.CorrelationMatrix, target string, threshold float64, exclude []string) ([]domain.LeakFinding, []string) {
	ti := columnIndex(cm.Columns, target)

	var leaks []domain.LeakFinding
	if ti >= 0 {
		for i, c := range cm.Columns {
			if c == target {
				continue
			}
			r := cm.Values[ti][i]
			if math.Abs(r) >= threshold {
				leaks = append(leaks, domain.LeakFinding{
					Feature:     c,
					Correlation: r,
					Threshold:   threshold,
				})
			}
		}
	}

	sort.Slice(leaks, func(a, b int) bool {
		ra, rb := math.Abs(leaks[a].Correlation), math.Abs(leaks[b].Correlation)
		if ra != rb {
			return ra > rb
		}
		return leaks[a].Feature < leaks[b].Feature
	})

	seen := make(map[string]bool, len(exclude)+len(leaks))
	excluded := make([]string, 0, len(exclude)+len(leaks))
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		excluded = append(excluded, name)
	}
	for _, name := range exclude {
		add(name)
	}
	for _, l := range leaks {
		add(l.Feature)
	}
	sort.Strings(excluded)

	return leaks, excluded
}

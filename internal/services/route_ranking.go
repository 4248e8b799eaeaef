package services

import (
	"customs-analytics-service/internal/domain"
	"errors"
	"fmt"
	"slices"
)

// RankOptions controls route scoring.
type RankOptions struct {
	// DelayWeight and RiskWeight set the relative influence of average
	// delay and risk rate. They are normalized to sum to one, so only
	// their ratio matters.
	DelayWeight float64
	RiskWeight  float64

	// MinShipments drops routes with fewer shipments from the ranking.
	MinShipments int
}

// RankRoutes aggregates feature rows per route and ranks routes from
// best to worst performing.
//
// Each route gets its average arrival delay and its risk rate, the mean
// ordinal risk level over assessed shipments. Both are min-max
// normalized across the ranked routes and combined into a weighted
// score; lower is better. When every route shares the same value the
// normalized term is zero for all of them. Ties in score break on the
// route code so the ranking is deterministic.
//
// Routes excluded for falling under MinShipments are reported in the
// returned warnings.
func RankRoutes(rows []domain.FeatureRow, opts RankOptions) ([]domain.RouteSummary, []string, error) {
	if opts.DelayWeight < 0 || opts.RiskWeight < 0 {
		return nil, nil, errors.New("rank routes: weights must be non-negative")
	}
	wsum := opts.DelayWeight + opts.RiskWeight
	if wsum <= 0 {
		return nil, nil, errors.New("rank routes: weights must not both be zero")
	}
	wDelay := opts.DelayWeight / wsum
	wRisk := opts.RiskWeight / wsum

	minShipments := opts.MinShipments
	if minShipments < 1 {
		minShipments = 1
	}

	type routeAgg struct {
		count     int
		delaySum  float64
		riskSum   float64
		riskCount int
	}
	agg := make(map[string]*routeAgg)
	for _, r := range rows {
		if r.RouteCode == "" {
			continue
		}
		a := agg[r.RouteCode]
		if a == nil {
			a = &routeAgg{}
			agg[r.RouteCode] = a
		}
		a.count++
		a.delaySum += r.ArrivalDelayDays
		if r.RiskLevel != domain.RiskUnknown {
			a.riskSum += float64(r.RiskLevel)
			a.riskCount++
		}
	}

	var warnings []string
	summaries := make([]domain.RouteSummary, 0, len(agg))
	for code, a := range agg {
		if a.count < minShipments {
			warnings = append(warnings, fmt.Sprintf("route %s excluded from ranking: %d shipments, need %d", code, a.count, minShipments))
			continue
		}

		s := domain.RouteSummary{
			RouteCode:     code,
			ShipmentCount: a.count,
			AvgDelayDays:  a.delaySum / float64(a.count),
		}
		if a.riskCount > 0 {
			s.RiskRate = a.riskSum / float64(a.riskCount)
		}
		summaries = append(summaries, s)
	}
	slices.Sort(warnings)

	if len(summaries) == 0 {
		return nil, warnings, nil
	}

	normalize(summaries, func(s *domain.RouteSummary) float64 { return s.AvgDelayDays },
		func(s *domain.RouteSummary, v float64) { s.NormDelay = v })
	normalize(summaries, func(s *domain.RouteSummary) float64 { return s.RiskRate },
		func(s *domain.RouteSummary, v float64) { s.NormRisk = v })

	for i := range summaries {
		summaries[i].Score = wDelay*summaries[i].NormDelay + wRisk*summaries[i].NormRisk
	}

	slices.SortFunc(summaries, func(a, b domain.RouteSummary) int {
		if a.Score < b.Score {
			return -1
		}
		if a.Score > b.Score {
			return 1
		}
		if a.RouteCode < b.RouteCode {
			return -1
		}
		if a.RouteCode > b.RouteCode {
			return 1
		}
		return 0
	})

	for i := range summaries {
		summaries[i].Rank = i + 1
	}

	return summaries, warnings, nil
}

// TopRoutes returns the first n ranked routes, or all of them when n is
// zero or exceeds the ranking.
func TopRoutes(summaries []domain.RouteSummary, n int) []domain.RouteSummary {
	if n <= 0 || n >= len(summaries) {
		return summaries
	}
	return summaries[:n]
}

// normalize min-max scales one metric across the summaries into [0, 1].
// A zero range maps every route to zero so a shared value carries no
// weight in the score.
func normalize(summaries []domain.RouteSummary, get func(*domain.RouteSummary) float64, set func(*domain.RouteSummary, float64)) {
	lo, hi := get(&summaries[0]), get(&summaries[0])
	for i := range summaries {
		v := get(&summaries[i])
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	span := hi - lo
	for i := range summaries {
		if span == 0 {
			set(&summaries[i], 0)
			continue
		}
		set(&summaries[i], (get(&summaries[i])-lo)/span)
	}
}

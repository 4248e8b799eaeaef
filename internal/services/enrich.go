package services

import (
	"context"
	"customs-analytics-service/internal/domain"
	"customs-analytics-service/internal/ports"
	"fmt"
	"slices"
	"sync"
)

// World Bank indicator codes for the Logistics Performance Index
// components used during enrichment.
const (
	IndicatorLPIOverall        = "LP.LPI.OVRL.XQ"
	IndicatorLPICustoms        = "LP.LPI.CUST.XQ"
	IndicatorLPIInfrastructure = "LP.LPI.INFR.XQ"
	IndicatorLPILogistics      = "LP.LPI.LOGS.XQ"
	IndicatorLPITracking       = "LP.LPI.TRAC.XQ"
	IndicatorLPITimeliness     = "LP.LPI.TIME.XQ"
)

// LPIIndicators lists every indicator fetched by an enrichment pass.
func LPIIndicators() []string {
	return []string{
		IndicatorLPIOverall,
		IndicatorLPICustoms,
		IndicatorLPIInfrastructure,
		IndicatorLPILogistics,
		IndicatorLPITracking,
		IndicatorLPITimeliness,
	}
}

type indicatorResult struct {
	indicator string
	values    map[string]ports.IndicatorValue
	err       error
}

// EnrichResult summarizes one enrichment pass.
type EnrichResult struct {
	// Enriched counts shipments with a complete LPI profile on both ends.
	Enriched int
	// Incomplete counts shipments left with gaps in their LPI fields.
	Incomplete int
	// MissingCountries lists countries with no resolved overall score.
	MissingCountries []string
}

// EnrichShipments resolves LPI indicator values for every country that
// appears in the shipments and fills in the per-country profiles plus
// the route-level aggregates. Shipments whose countries have no
// published scores keep nil fields and are counted as incomplete; with
// strict set, any incomplete shipment fails the pass instead.
func EnrichShipments(ctx context.Context, shipments []*domain.Shipment, provider ports.IndicatorProvider, strict bool) (EnrichResult, error) {
	countrySet := make(map[string]bool)
	for _, s := range shipments {
		if s.OriginCountry != "" {
			countrySet[s.OriginCountry] = true
		}
		if s.DestinationCountry != "" {
			countrySet[s.DestinationCountry] = true
		}
	}

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	slices.Sort(countries)

	if len(countries) == 0 || len(shipments) == 0 {
		return EnrichResult{}, nil
	}

	indicators := LPIIndicators()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, 5)
	resultsCh := make(chan indicatorResult, len(indicators))
	var wg sync.WaitGroup

	for _, indicator := range indicators {
		wg.Add(1)
		go func(code string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			values, e := provider.GetIndicator(ctx, code, countries)
			if e != nil {
				resultsCh <- indicatorResult{indicator: code, err: fmt.Errorf("enrich shipments: get indicator %s: %w", code, e)}
				cancel()
				return
			}

			resultsCh <- indicatorResult{indicator: code, values: values}
		}(indicator)
	}

	wg.Wait()
	close(resultsCh)

	byIndicator := make(map[string]map[string]ports.IndicatorValue, len(indicators))
	var fetchErr error
	for res := range resultsCh {
		if res.err != nil {
			if fetchErr == nil {
				fetchErr = res.err
			}
			continue
		}
		byIndicator[res.indicator] = res.values
	}
	if fetchErr != nil {
		return EnrichResult{}, fetchErr
	}

	profiles := make(map[string]domain.LPIProfile, len(countries))
	for _, c := range countries {
		profiles[c] = domain.LPIProfile{
			Overall:        indicatorValue(byIndicator[IndicatorLPIOverall], c),
			Customs:        indicatorValue(byIndicator[IndicatorLPICustoms], c),
			Infrastructure: indicatorValue(byIndicator[IndicatorLPIInfrastructure], c),
			Logistics:      indicatorValue(byIndicator[IndicatorLPILogistics], c),
			Tracking:       indicatorValue(byIndicator[IndicatorLPITracking], c),
			Timeliness:     indicatorValue(byIndicator[IndicatorLPITimeliness], c),
		}
	}

	var out EnrichResult
	for _, c := range countries {
		if profiles[c].Overall == nil {
			out.MissingCountries = append(out.MissingCountries, c)
		}
	}

	for _, s := range shipments {
		s.OriginLPI = profiles[s.OriginCountry]
		s.DestinationLPI = profiles[s.DestinationCountry]

		s.RouteLPIAverage = meanOf(s.OriginLPI.Overall, s.DestinationLPI.Overall)
		s.RouteLPIDifference = diffOf(s.OriginLPI.Overall, s.DestinationLPI.Overall)
		s.RouteCustomsLPIAverage = meanOf(s.OriginLPI.Customs, s.DestinationLPI.Customs)
		s.RouteInfrastructureGap = diffOf(s.OriginLPI.Infrastructure, s.DestinationLPI.Infrastructure)

		if s.Enriched() {
			out.Enriched++
		} else {
			out.Incomplete++
		}
	}

	if strict && out.Incomplete > 0 {
		return out, fmt.Errorf("enrich shipments: %d of %d shipments incomplete, missing countries: %v",
			out.Incomplete, len(shipments), out.MissingCountries)
	}

	return out, nil
}

func indicatorValue(values map[string]ports.IndicatorValue, country string) *float64 {
	v, ok := values[country]
	if !ok {
		return nil
	}
	value := v.Value
	return &value
}

// meanOf averages the origin and destination component when both are
// resolved.
func meanOf(origin, destination *float64) *float64 {
	if origin == nil || destination == nil {
		return nil
	}
	m := (*origin + *destination) / 2
	return &m
}

// diffOf is destination minus origin: positive means the destination
// side performs better.
func diffOf(origin, destination *float64) *float64 {
	if origin == nil || destination == nil {
		return nil
	}
	d := *destination - *origin
	return &d
}

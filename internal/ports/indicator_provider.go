package ports

import "context"

// Single indicator observation for one country.
type IndicatorValue struct {
	Country   string
	Indicator string
	Year      int
	Value     float64
}

// Contract for retrieving logistics indicator values per country.
type IndicatorProvider interface {
	// Return the most recent available value of one indicator for each
	// requested country. Countries with no published value are absent
	// from the result rather than reported as errors.
	GetIndicator(ctx context.Context, indicator string, countries []string) (map[string]IndicatorValue, error)
}

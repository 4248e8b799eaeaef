package indicators

import (
	"context"
	"customs-analytics-service/internal/ports"
)

// MockIndicatorProvider serves indicator values from a fixed table,
// keyed by indicator code and then country. Countries absent from the
// table are simply absent from the result, matching the provider
// contract. Setting Err makes every lookup fail.
type MockIndicatorProvider struct {
	values map[string]map[string]float64
	year   int

	Err error
}

func NewMockIndicatorProvider(values map[string]map[string]float64) *MockIndicatorProvider {
	return &MockIndicatorProvider{values: values, year: 2023}
}

func (p *MockIndicatorProvider) GetIndicator(ctx context.Context, indicator string, countries []string) (map[string]ports.IndicatorValue, error) {
	if p.Err != nil {
		return nil, p.Err
	}

	byCountry := p.values[indicator]
	out := make(map[string]ports.IndicatorValue, len(countries))
	for _, c := range countries {
		v, ok := byCountry[c]
		if !ok {
			continue
		}
		out[c] = ports.IndicatorValue{
			Country:   c,
			Indicator: indicator,
			Year:      p.year,
			Value:     v,
		}
	}
	return out, nil
}

package indicators

import (
	"context"
	"customs-analytics-service/internal/platform/obs"
	"customs-analytics-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// IndicatorCache is the persistent cache the provider consults before
// calling the World Bank API. Both SQL dialect caches satisfy it.
type IndicatorCache interface {
	GetMany(ctx context.Context, indicator string, countries []string) (map[string]ports.IndicatorValue, error)
	PutMany(ctx context.Context, values []ports.IndicatorValue) error
}

// WorldBankProvider implements IndicatorProvider using the public
// World Bank indicators API.
//
// It coordinates:
//   - Country name normalization
//   - Persistent indicator caching
//   - External API calls with retry/backoff
//   - A circuit breaker that stops hammering a failing API
//
// The provider is safe for concurrent use.
type WorldBankProvider struct {
	session *http.Client
	baseURL string
	cache   IndicatorCache
	breaker *gobreaker.CircuitBreaker

	retryInterval time.Duration
	maxRetries    uint64
}

func NewWorldBankProvider(cache IndicatorCache) *WorldBankProvider {
	return &WorldBankProvider{
		session: &http.Client{Timeout: 20 * time.Second},
		baseURL: "https://api.worldbank.org",
		cache:   cache,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "worldbank",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		retryInterval: 500 * time.Millisecond,
		maxRetries:    3,
	}
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (p *WorldBankProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Return the most recent published value of one indicator for each
// requested country. Countries the World Bank has no value for are
// absent from the result.
func (p *WorldBankProvider) GetIndicator(
	ctx context.Context,
	indicator string,
	countries []string,
) (_ map[string]ports.IndicatorValue, err error) {
	defer obs.Time(ctx, "worldbank.GetIndicator")(&err)

	if indicator == "" {
		return nil, errors.New("indicator must be non-empty")
	}

	if len(countries) == 0 {
		return map[string]ports.IndicatorValue{}, nil
	}

	seen := make(map[string]struct{}, len(countries))
	wanted := make([]string, 0, len(countries))
	for _, c := range countries {
		nc := p.normalize(c)
		if nc == "" {
			continue
		}
		if _, ok := seen[nc]; ok {
			continue
		}
		seen[nc] = struct{}{}
		wanted = append(wanted, nc)
	}

	if len(wanted) == 0 {
		return map[string]ports.IndicatorValue{}, nil
	}

	hits := make(map[string]ports.IndicatorValue)
	// Check the persistent cache before issuing external API calls.
	if p.cache != nil {
		var err error
		hits, err = p.cache.GetMany(ctx, indicator, wanted)
		if err != nil {
			return nil, fmt.Errorf("world bank get indicator cache: %w", err)
		}
	}

	misses := make([]string, 0, len(wanted))
	for _, c := range wanted {
		if _, ok := hits[c]; !ok {
			misses = append(misses, c)
		}
	}

	if len(misses) == 0 {
		return hits, nil
	}

	fetchedAny, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetchIndicator(ctx, indicator, misses)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching indicator %s: %w", indicator, err)
	}
	fetched := fetchedAny.(map[string]ports.IndicatorValue)

	if p.cache != nil && len(fetched) > 0 {
		values := make([]ports.IndicatorValue, 0, len(fetched))
		for _, v := range fetched {
			values = append(values, v)
		}
		if err := p.cache.PutMany(ctx, values); err != nil {
			log.Printf("indicator cache write failed: %v", err)
		}
	}

	out := make(map[string]ports.IndicatorValue, len(hits)+len(fetched))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}

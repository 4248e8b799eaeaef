package indicators

import (
	"context"
	"customs-analytics-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Dataset country names whose World Bank display name differs.
var countryAliases = map[string]string{
	"USA":         "United States",
	"UK":          "United Kingdom",
	"UAE":         "United Arab Emirates",
	"Russia":      "Russian Federation",
	"South Korea": "Korea, Rep.",
	"Vietnam":     "Viet Nam",
	"Egypt":       "Egypt, Arab Rep.",
	"Iran":        "Iran, Islamic Rep.",
	"Turkey":      "Turkiye",
	"Venezuela":   "Venezuela, RB",
	"Laos":        "Lao PDR",
	"Slovakia":    "Slovak Republic",
	"Hong Kong":   "Hong Kong SAR, China",
}

func wbName(country string) string {
	if alias, ok := countryAliases[country]; ok {
		return alias
	}
	return country
}

// One observation row of the World Bank v2 indicator response.
type wbObservation struct {
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type wbMeta struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

func (p *WorldBankProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (p *WorldBankProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := p.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff while respecting context
// cancellation. Other HTTP errors are permanent.
func (p *WorldBankProvider) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	var resp *http.Response

	op := func() error {
		req, err := makeReq()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("make request: %w", err))
		}

		r, err := p.do(req)
		if err == nil {
			resp = r
			return nil
		}

		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				return err
			}
			return backoff.Permanent(err)
		}

		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.retryInterval
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, p.maxRetries), ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// fetchIndicator pulls every published observation of one indicator and
// keeps the most recent value per requested country. Countries are
// matched by display name, so regional aggregates in the response never
// collide with a request.
func (p *WorldBankProvider) fetchIndicator(
	ctx context.Context,
	indicator string,
	countries []string,
) (map[string]ports.IndicatorValue, error) {
	wanted := make(map[string]string, len(countries))
	for _, c := range countries {
		wanted[strings.ToLower(wbName(c))] = c
	}

	out := make(map[string]ports.IndicatorValue, len(countries))
	years := make(map[string]int, len(countries))

	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/v2/country/all/indicator/%s?format=json&per_page=1000&page=%d",
			p.baseURL, url.PathEscape(indicator), page)

		resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
			return p.newRequest(ctx, http.MethodGet, u, nil)
		})
		if err != nil {
			return nil, fmt.Errorf("world bank page %d: %w", page, err)
		}

		meta, observations, err := decodeIndicatorPage(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("world bank page %d: %w", page, err)
		}

		for _, obs := range observations {
			if obs.Value == nil {
				continue
			}
			country, ok := wanted[strings.ToLower(obs.Country.Value)]
			if !ok {
				continue
			}
			year, err := strconv.Atoi(obs.Date)
			if err != nil {
				continue
			}
			if prev, ok := years[country]; ok && prev >= year {
				continue
			}
			years[country] = year
			out[country] = ports.IndicatorValue{
				Country:   country,
				Indicator: indicator,
				Year:      year,
				Value:     *obs.Value,
			}
		}

		if meta.Pages == 0 || page >= meta.Pages {
			break
		}
	}

	return out, nil
}

// The v2 response is a two-element array: metadata, then observations.
func decodeIndicatorPage(r io.Reader) (wbMeta, []wbObservation, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return wbMeta{}, nil, fmt.Errorf("parse response: %w", err)
	}
	if len(raw) < 2 {
		return wbMeta{}, nil, errors.New("parse response: missing observation element")
	}

	var meta wbMeta
	if err := json.Unmarshal(raw[0], &meta); err != nil {
		return wbMeta{}, nil, fmt.Errorf("parse metadata: %w", err)
	}

	var observations []wbObservation
	if err := json.Unmarshal(raw[1], &observations); err != nil {
		return wbMeta{}, nil, fmt.Errorf("parse observations: %w", err)
	}

	return meta, observations, nil
}

package cache

import (
	"context"
	"customs-analytics-service/internal/platform/obs"
	"customs-analytics-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLIndicatorCache is a SQL-backed cache for per-country indicator
// values fetched from the World Bank API.
type SQLIndicatorCache struct {
	DB *sql.DB
}

func NewSQLIndicatorCache(db *sql.DB) *SQLIndicatorCache {
	return &SQLIndicatorCache{DB: db}
}

// Fetch cached values of one indicator for multiple countries.
func (s *SQLIndicatorCache) GetMany(
	ctx context.Context,
	indicator string,
	countries []string,
) (_ map[string]ports.IndicatorValue, err error) {
	defer obs.Time(ctx, "indicator.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("indicator cache: db is nil")
	}

	if indicator == "" {
		return nil, errors.New("get indicator cache: indicator must not be empty")
	}

	if len(countries) == 0 {
		return map[string]ports.IndicatorValue{}, nil
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(countries))
	for _, c := range countries {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}

		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}

	if len(uniq) == 0 {
		return map[string]ports.IndicatorValue{}, nil
	}

	q := `
	SELECT country, year, value
    FROM indicator_cache
    WHERE indicator = $1
        AND country = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, indicator, uniq)
	if err != nil {
		return nil, fmt.Errorf("get indicator cache: query indicator_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.IndicatorValue, len(uniq))
	for rows.Next() {
		var country string
		var year int
		var value float64
		if err := rows.Scan(&country, &year, &value); err != nil {
			return nil, fmt.Errorf("get indicator cache: scan rows: %w", err)
		}
		out[country] = ports.IndicatorValue{
			Country:   country,
			Indicator: indicator,
			Year:      year,
			Value:     value,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get indicator cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many fetched indicator values.
func (s *SQLIndicatorCache) PutMany(ctx context.Context, values []ports.IndicatorValue) error {
	if s.DB == nil {
		return errors.New("indicator cache: db is nil")
	}

	if len(values) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert indicator cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO indicator_cache (country, indicator, year, value, fetched_at)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (country, indicator) DO UPDATE
	SET year = EXCLUDED.year,
		value = EXCLUDED.value,
		fetched_at = EXCLUDED.fetched_at;
	`)
	if err != nil {
		return fmt.Errorf("insert indicator cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, v := range values {
		if strings.TrimSpace(v.Country) == "" || strings.TrimSpace(v.Indicator) == "" {
			return fmt.Errorf("insert indicator cache: empty country or indicator key")
		}

		if _, err := stmt.ExecContext(ctx, v.Country, v.Indicator, v.Year, v.Value, now); err != nil {
			return fmt.Errorf("insert indicator cache country=%q: %w", v.Country, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert indicator cache commit: %w", err)
	}

	return nil
}

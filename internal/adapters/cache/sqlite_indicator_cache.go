package cache

import (
	"context"
	"customs-analytics-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache for per-country indicator values. Country keys
// are expected to be consistent (e.g., already trimmed) by the caller.
type SqliteIndicatorCache struct {
	DB *sql.DB
}

func NewSqliteIndicatorCache(db *sql.DB) *SqliteIndicatorCache {
	return &SqliteIndicatorCache{DB: db}
}

// Fetch cached values of one indicator for multiple countries.
func (s *SqliteIndicatorCache) GetMany(
	ctx context.Context,
	indicator string,
	countries []string,
) (map[string]ports.IndicatorValue, error) {
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
	ph := make([]string, 0, len(countries))
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
		ph = append(ph, "?")
	}

	if len(uniq) == 0 {
		return map[string]ports.IndicatorValue{}, nil
	}

	placeholders := strings.Join(ph, ",")
	args := make([]any, 0, 1+len(uniq))
	args = append(args, indicator)
	for _, c := range uniq {
		args = append(args, c)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        country,
        year,
        value
    FROM indicator_cache
    WHERE indicator = ?
        AND country IN (%s);
	`, placeholders)

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
func (s *SqliteIndicatorCache) PutMany(ctx context.Context, values []ports.IndicatorValue) error {
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
	INSERT OR REPLACE INTO indicator_cache (
        country,
        indicator,
        year,
        value,
        fetched_at
    )
    VALUES (?, ?, ?, ?, ?)
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

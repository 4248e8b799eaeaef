package ports

import (
	"context"
	"time"
)

// Summary measurements describing one completed analysis run.
// BestRoute and BestScore are empty when the run ranked no routes.
type RunRecord struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	DatasetRows   int
	DelaySkewness float64
	LeakCount     int
	RoutesRanked  int
	BestRoute     string
	BestScore     float64
	WarningCount  int
}

// Port: a boundary for recording analysis run history in a time series
// store. Implementations must treat failures as non-fatal to the run.
type HistorySink interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

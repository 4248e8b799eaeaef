package history

import (
	"context"
	"customs-analytics-service/internal/ports"
	"errors"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxDB-backed implementation of the HistorySink port. Each analysis
// run becomes one point in the analysis_run measurement, so run history
// can be charted over time.
type InfluxHistorySink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

func NewInfluxHistorySink(url, token, org, bucket string) *InfluxHistorySink {
	client := influxdb2.NewClient(url, token)
	return &InfluxHistorySink{
		client: client,
		write:  client.WriteAPIBlocking(org, bucket),
	}
}

// RecordRun writes one run record. Callers treat failures as
// non-fatal; the analysis result does not depend on history.
func (s *InfluxHistorySink) RecordRun(ctx context.Context, rec ports.RunRecord) error {
	if rec.RunID == "" {
		return errors.New("record run: run ID is empty")
	}

	fields := map[string]interface{}{
		"dataset_rows":   rec.DatasetRows,
		"delay_skewness": rec.DelaySkewness,
		"leak_count":     rec.LeakCount,
		"routes_ranked":  rec.RoutesRanked,
		"warning_count":  rec.WarningCount,
		"duration_ms":    rec.Duration.Milliseconds(),
	}
	if rec.BestRoute != "" {
		fields["best_route"] = rec.BestRoute
		fields["best_score"] = rec.BestScore
	}

	point := influxdb2.NewPoint("analysis_run",
		map[string]string{"run_id": rec.RunID},
		fields,
		rec.StartedAt,
	)

	if err := s.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("record run %s: %w", rec.RunID, err)
	}
	return nil
}

// Close releases the underlying HTTP resources.
func (s *InfluxHistorySink) Close() {
	s.client.Close()
}

package history

import (
	"context"
	"customs-analytics-service/internal/ports"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestInfluxHistorySinkRecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	sink := NewInfluxHistorySink(srv.URL, "test-token", "test-org", "test-bucket")
	t.Cleanup(sink.Close)

	rec := ports.RunRecord{
		RunID:         "run-20240101-120000",
		StartedAt:     time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
		Duration:      1500 * time.Millisecond,
		DatasetRows:   6,
		DelaySkewness: 1.031,
		LeakCount:     1,
		RoutesRanked:  2,
		BestRoute:     "CN-DE",
		BestScore:     0.1,
		WarningCount:  3,
	}
	if err := sink.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("record run: %v", err)
	}

	for _, want := range []string{
		"analysis_run",
		"run_id=run-20240101-120000",
		"dataset_rows=6i",
		"leak_count=1i",
		"duration_ms=1500i",
		`best_route="CN-DE"`,
		"best_score=0.1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("line protocol missing %q: %s", want, body)
		}
	}
}

func TestInfluxHistorySinkRejectsEmptyRunID(t *testing.T) {
	sink := NewInfluxHistorySink("http://localhost:0", "", "org", "bucket")
	t.Cleanup(sink.Close)

	if err := sink.RecordRun(context.Background(), ports.RunRecord{}); err == nil {
		t.Fatalf("want error for empty run ID")
	}
}

package reporting

import (
	"customs-analytics-service/internal/domain"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"
)

// Report artifact file names.
const (
	ReportFile          = "report.json"
	RouteRankingsFile   = "route_rankings.csv"
	FeatureMetadataFile = "feature_metadata.json"
	SummaryFile         = "summary.txt"
)

// Writer persists analysis snapshots as report artifacts in a
// directory. Files are replaced atomically, so a reader never sees a
// half-written report.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// WriteAll persists every artifact of one snapshot: the full snapshot
// as JSON, the route rankings as CSV, the feature metadata as JSON and
// a human-readable summary.
func (w *Writer) WriteAll(snap *domain.AnalysisSnapshot) error {
	if snap == nil {
		return errors.New("write report: snapshot is nil")
	}
	if w.Dir == "" {
		return errors.New("write report: directory is empty")
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("write report: create dir %q: %w", w.Dir, err)
	}

	artifacts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ReportFile, func(out io.Writer) error { return writeJSON(out, snap) }},
		{RouteRankingsFile, func(out io.Writer) error { return writeRankingsCSV(out, snap.RouteRankings) }},
		{FeatureMetadataFile, func(out io.Writer) error { return writeJSON(out, snap.FeatureMetadata) }},
		{SummaryFile, func(out io.Writer) error { return writeSummary(out, snap) }},
	}

	for _, a := range artifacts {
		if err := w.writeAtomic(a.name, a.write); err != nil {
			return fmt.Errorf("write report: %s: %w", a.name, err)
		}
	}

	return nil
}

// writeAtomic writes through a temp file in the same directory and
// renames it into place.
func (w *Writer) writeAtomic(name string, write func(io.Writer) error) error {
	path := filepath.Join(w.Dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRankingsCSV(out io.Writer, rankings []domain.RouteSummary) error {
	cw := csv.NewWriter(out)

	header := []string{
		"rank", "route_code", "shipment_count",
		"avg_delay_days", "risk_rate", "norm_delay", "norm_risk", "score",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rankings {
		row := []string{
			strconv.Itoa(r.Rank),
			r.RouteCode,
			strconv.Itoa(r.ShipmentCount),
			formatFloat(r.AvgDelayDays),
			formatFloat(r.RiskRate),
			formatFloat(r.NormDelay),
			formatFloat(r.NormRisk),
			formatFloat(r.Score),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write route %s: %w", r.RouteCode, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeSummary(out io.Writer, snap *domain.AnalysisSnapshot) error {
	fmt.Fprintf(out, "Analysis run %s (%s)\n", snap.RunID, snap.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "Dataset rows: %d\n", snap.DatasetRows)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	delayColumn := snap.DelayHistogram.Column
	for _, cs := range snap.ColumnStats {
		if cs.Column != delayColumn {
			continue
		}
		fmt.Fprintf(out, "\nDelay distribution (%s)\n", cs.Column)
		fmt.Fprintf(tw, "\tmean\t%.3f\n", cs.Mean)
		fmt.Fprintf(tw, "\tstd\t%.3f\n", cs.StdDev)
		fmt.Fprintf(tw, "\tmin\t%.3f\n", cs.Min)
		fmt.Fprintf(tw, "\tmax\t%.3f\n", cs.Max)
		fmt.Fprintf(tw, "\tskewness\t%.3f\n", cs.Skewness)
		break
	}
	tw.Flush()

	fmt.Fprintf(out, "\nRisk level balance\n")
	for _, rs := range snap.RiskBalance {
		fmt.Fprintf(tw, "\t%s\t%d\t%.1f%%\n", rs.Label, rs.Count, rs.Share*100)
	}
	tw.Flush()

	if len(snap.TopCorrelations) > 0 {
		fmt.Fprintf(out, "\nStrongest correlations with %s\n", snap.FeatureMetadata.RegressionTarget)
		for _, c := range snap.TopCorrelations {
			fmt.Fprintf(tw, "\t%s\t%.3f\n", c.Feature, c.R)
		}
		tw.Flush()
	}

	fmt.Fprintf(out, "\nLeakage findings\n")
	if len(snap.Leaks) == 0 {
		fmt.Fprintf(out, "\tnone\n")
	}
	for _, l := range snap.Leaks {
		fmt.Fprintf(tw, "\t%s\tr=%.3f\tthreshold=%.2f\n", l.Feature, l.Correlation, l.Threshold)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nRoute rankings\n")
	for _, r := range snap.RouteRankings {
		fmt.Fprintf(tw, "\t%d\t%s\tshipments=%d\tavg_delay=%.2f\trisk_rate=%.2f\tscore=%.4f\n",
			r.Rank, r.RouteCode, r.ShipmentCount, r.AvgDelayDays, r.RiskRate, r.Score)
	}
	tw.Flush()

	if len(snap.DelayTerms) > 0 {
		fmt.Fprintf(out, "\nDelay reason terms\n")
		for _, t := range snap.DelayTerms {
			fmt.Fprintf(tw, "\t%s\tweight=%.3f\tdocs=%d\n", t.Term, t.Weight, t.Documents)
		}
		tw.Flush()
	}

	if len(snap.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings\n")
		for _, warning := range snap.Warnings {
			fmt.Fprintf(out, "\t- %s\n", warning)
		}
	}

	return nil
}

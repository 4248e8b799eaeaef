package services

import (
	"context"
	"customs-analytics-service/internal/config"
	"customs-analytics-service/internal/domain"
	"customs-analytics-service/internal/platform/obs"
	"customs-analytics-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrNoSnapshot is returned by Latest when no analysis has completed
// yet and nothing is cached.
var ErrNoSnapshot = errors.New("pipeline: no analysis snapshot available")

// snapshotCacheKey is where the latest snapshot lives in the result cache.
const snapshotCacheKey = "analysis:latest"

// Pipeline runs the full analysis over the stored shipments and serves
// the latest snapshot. The repository is required; the indicator
// provider, result cache, history sink and metrics are optional and
// disable their step when nil.
type Pipeline struct {
	repo       ports.ShipmentRepository
	indicators ports.IndicatorProvider
	cache      ports.ResultCache
	history    ports.HistorySink
	metrics    *obs.Metrics
	strict     bool

	mu   sync.RWMutex
	cfg  *config.Config
	last *domain.AnalysisSnapshot
}

// PipelineOptions carries the optional collaborators of a Pipeline.
type PipelineOptions struct {
	Indicators ports.IndicatorProvider
	Cache      ports.ResultCache
	History    ports.HistorySink
	Metrics    *obs.Metrics

	// StrictEnrichment fails a run when any shipment cannot be fully
	// enriched, instead of recording a warning.
	StrictEnrichment bool
}

func NewPipeline(repo ports.ShipmentRepository, cfg *config.Config, opts PipelineOptions) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		repo:       repo,
		indicators: opts.Indicators,
		cache:      opts.Cache,
		history:    opts.History,
		metrics:    opts.Metrics,
		strict:     opts.StrictEnrichment,
		cfg:        cfg,
	}
}

// RunOverrides are per-run parameter overrides. Nil fields keep the
// configured value.
type RunOverrides struct {
	DelayWeight      *float64
	RiskWeight       *float64
	LeakageThreshold *float64
	HistogramBins    *int
	TopRoutes        *int
}

// runParams is the effective parameter set of one run after overrides.
type runParams struct {
	delayWeight   float64
	riskWeight    float64
	threshold     float64
	histogramBins int
	topRoutes     int
}

// Run executes the analysis pipeline: load, enrich, derive features,
// encode and scale, descriptive stats, correlations, leakage detection,
// route ranking, and the delay reason summary. The finished snapshot is
// cached, kept in memory, and recorded to the history sink.
func (p *Pipeline) Run(ctx context.Context, overrides *RunOverrides) (snap *domain.AnalysisSnapshot, err error) {
	defer obs.Time(ctx, "pipeline.run")(&err)

	start := time.Now()
	defer func() {
		status := "ok"
		rows, leaks := 0, 0
		if err != nil {
			status = "error"
		} else {
			rows = snap.DatasetRows
			leaks = len(snap.Leaks)
		}
		p.metrics.ObserveRun(status, time.Since(start), rows, leaks)
	}()

	cfg := p.configSnapshot()
	params, err := resolveParams(&cfg, overrides)
	if err != nil {
		return nil, err
	}

	shipments, err := p.repo.ListShipments(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list shipments: %w", err)
	}
	if len(shipments) == 0 {
		return nil, errors.New("pipeline: no shipments to analyze")
	}

	var warnings []string

	if p.indicators != nil {
		enr, eerr := EnrichShipments(ctx, shipments, p.indicators, p.strict)
		if eerr != nil {
			return nil, fmt.Errorf("pipeline: %w", eerr)
		}
		if len(enr.MissingCountries) > 0 {
			warnings = append(warnings, fmt.Sprintf("lpi enrichment: no published scores for %v", enr.MissingCountries))
		}
		log.Printf("op=pipeline.enrich enriched=%d incomplete=%d", enr.Enriched, enr.Incomplete)
	}

	kept := make([]*domain.Shipment, 0, len(shipments))
	rows := make([]domain.FeatureRow, 0, len(shipments))
	dropped := 0
	for _, s := range shipments {
		row, derr := domain.DeriveFeatures(s)
		if derr != nil {
			dropped++
			continue
		}
		kept = append(kept, s)
		rows = append(rows, row)
	}
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d shipments dropped: missing date fields", dropped))
	}
	if len(kept) == 0 {
		return nil, errors.New("pipeline: no analyzable shipments after feature derivation")
	}

	matrix, encodings, err := BuildMatrix(kept, rows)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	scaleCols := cfg.Features.ScaleColumns
	if len(scaleCols) == 0 {
		scaleCols = DefaultScaleColumns()
	}
	flagged, skipped := ScaleColumns(matrix, scaleCols)
	for _, name := range flagged {
		warnings = append(warnings, fmt.Sprintf("column %s has zero variance, standardized to zeros", name))
	}
	for _, name := range skipped {
		warnings = append(warnings, fmt.Sprintf("scale column %s not present in the feature matrix", name))
	}
	applied := make([]string, 0, len(scaleCols))
	skippedSet := make(map[string]bool, len(skipped))
	for _, name := range skipped {
		skippedSet[name] = true
	}
	for _, name := range scaleCols {
		if !skippedSet[name] {
			applied = append(applied, name)
		}
	}

	columnStats := p.describeColumns(matrix)

	delayStats := domain.ColumnStats{Column: ColArrivalDelayDays}
	for _, cs := range columnStats {
		if cs.Column == ColArrivalDelayDays {
			delayStats = cs
			break
		}
	}
	if delayStats.Degenerate {
		warnings = append(warnings, fmt.Sprintf("%s is degenerate, skewness reported as zero", ColArrivalDelayDays))
	}

	histogram := Histogram(ColArrivalDelayDays, matrix.Data[ColArrivalDelayDays], params.histogramBins)

	levels := make([]domain.RiskLevel, len(rows))
	for i, r := range rows {
		levels[i] = r.RiskLevel
	}
	riskBalance := ClassBalance(levels)

	corr := Correlations(matrix)
	topCorr := TopCorrelations(corr, ColArrivalDelayDays, cfg.Analysis.TopCorrelations)

	leaks, excluded := DetectLeaks(corr, ColArrivalDelayDays, params.threshold, cfg.Leakage.Exclude)
	for _, l := range leaks {
		warnings = append(warnings, fmt.Sprintf("possible target leakage: %s correlates %.3f with %s, drop it before modeling",
			l.Feature, l.Correlation, ColArrivalDelayDays))
	}

	rankings, rankWarnings, err := RankRoutes(rows, RankOptions{
		DelayWeight:  params.delayWeight,
		RiskWeight:   params.riskWeight,
		MinShipments: cfg.Analysis.MinRouteShipments,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	warnings = append(warnings, rankWarnings...)
	rankings = TopRoutes(rankings, params.topRoutes)

	reasons := make([]string, 0, len(kept))
	for _, s := range kept {
		reasons = append(reasons, s.DelayReason)
	}
	terms := DelayReasonTerms(reasons, TermOptions{
		MaxVocabulary:  cfg.DelayReasons.MaxVocabulary,
		TopTerms:       cfg.DelayReasons.TopTerms,
		ExtraStopwords: cfg.DelayReasons.ExtraStopwords,
	})

	snap = &domain.AnalysisSnapshot{
		RunID:       "run-" + start.UTC().Format("20060102-150405"),
		StartedAt:   start.UTC(),
		DatasetRows: len(kept),

		ColumnStats:    columnStats,
		DelayHistogram: histogram,
		DelaySkewness:  delayStats.Skewness,
		RiskBalance:    riskBalance,

		Correlations:    corr,
		TopCorrelations: topCorr,

		Leaks:            leaks,
		ExcludedFeatures: excluded,

		RouteRankings: rankings,
		DelayTerms:    terms,

		FeatureMetadata: BuildFeatureMetadata(applied, encodings, excluded),

		Warnings: warnings,
	}
	snap.DurationMS = time.Since(start).Milliseconds()

	p.storeLatest(ctx, snap)
	p.recordRun(ctx, snap, time.Since(start))

	return snap, nil
}

// Latest returns the most recent snapshot, preferring the result cache
// and falling back to the in-process copy. It never computes.
func (p *Pipeline) Latest(ctx context.Context) (*domain.AnalysisSnapshot, error) {
	if p.cache != nil {
		payload, err := p.cache.Get(ctx, snapshotCacheKey)
		switch {
		case err == nil:
			var snap domain.AnalysisSnapshot
			if jerr := json.Unmarshal(payload, &snap); jerr == nil {
				p.metrics.ObserveCache(true)
				return &snap, nil
			}
			log.Printf("op=pipeline.latest msg=\"corrupt cached snapshot\"")
		case !errors.Is(err, ports.ErrCacheMiss):
			log.Printf("op=pipeline.latest err=%v", err)
		}
		p.metrics.ObserveCache(false)
	}

	p.mu.RLock()
	last := p.last
	p.mu.RUnlock()
	if last != nil {
		return last, nil
	}
	return nil, ErrNoSnapshot
}

// SetConfig swaps the analysis configuration and drops the cached
// snapshot, since it no longer reflects the active parameters.
func (p *Pipeline) SetConfig(ctx context.Context, cfg *config.Config) {
	if cfg == nil {
		return
	}

	p.mu.Lock()
	p.cfg = cfg
	p.last = nil
	p.mu.Unlock()

	if p.cache != nil {
		if err := p.cache.Invalidate(ctx, snapshotCacheKey); err != nil {
			log.Printf("op=pipeline.set_config err=%v", err)
		}
	}
	log.Printf("op=pipeline.set_config msg=\"configuration reloaded, snapshot invalidated\"")
}

func (p *Pipeline) configSnapshot() config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.cfg
}

// describeColumns computes per-column statistics with a bounded worker
// fan-out, then restores matrix column order.
func (p *Pipeline) describeColumns(m Matrix) []domain.ColumnStats {
	sem := make(chan struct{}, 5)
	statsCh := make(chan domain.ColumnStats, len(m.Columns))
	var wg sync.WaitGroup

	for _, col := range m.Columns {
		wg.Add(1)
		go func(name string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			statsCh <- Describe(name, m.Data[name])
		}(col)
	}

	wg.Wait()
	close(statsCh)

	byColumn := make(map[string]domain.ColumnStats, len(m.Columns))
	for cs := range statsCh {
		byColumn[cs.Column] = cs
	}

	out := make([]domain.ColumnStats, 0, len(m.Columns))
	for _, col := range m.Columns {
		out = append(out, byColumn[col])
	}
	return out
}

// storeLatest caches the snapshot and keeps an in-process copy. Cache
// failures degrade to the in-process copy.
func (p *Pipeline) storeLatest(ctx context.Context, snap *domain.AnalysisSnapshot) {
	if p.cache != nil {
		payload, err := json.Marshal(snap)
		if err == nil {
			err = p.cache.Put(ctx, snapshotCacheKey, payload)
		}
		if err != nil {
			log.Printf("op=pipeline.cache_put err=%v", err)
		}
	}

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()
}

// recordRun writes the run summary to the history sink. Failures are
// logged, never fatal to the run.
func (p *Pipeline) recordRun(ctx context.Context, snap *domain.AnalysisSnapshot, dur time.Duration) {
	if p.history == nil {
		return
	}

	rec := ports.RunRecord{
		RunID:         snap.RunID,
		StartedAt:     snap.StartedAt,
		Duration:      dur,
		DatasetRows:   snap.DatasetRows,
		DelaySkewness: snap.DelaySkewness,
		LeakCount:     len(snap.Leaks),
		RoutesRanked:  len(snap.RouteRankings),
		WarningCount:  len(snap.Warnings),
	}
	if len(snap.RouteRankings) > 0 {
		rec.BestRoute = snap.RouteRankings[0].RouteCode
		rec.BestScore = snap.RouteRankings[0].Score
	}
	if err := p.history.RecordRun(ctx, rec); err != nil {
		log.Printf("op=pipeline.record_run err=%v", err)
	}
}

// resolveParams applies per-run overrides to the configured parameters
// and validates the result.
func resolveParams(cfg *config.Config, o *RunOverrides) (runParams, error) {
	params := runParams{
		delayWeight:   cfg.Analysis.DelayWeight,
		riskWeight:    cfg.Analysis.RiskWeight,
		threshold:     cfg.Leakage.Threshold,
		histogramBins: cfg.Analysis.HistogramBins,
		topRoutes:     cfg.Analysis.TopRoutes,
	}
	if o != nil {
		if o.DelayWeight != nil {
			params.delayWeight = *o.DelayWeight
		}
		if o.RiskWeight != nil {
			params.riskWeight = *o.RiskWeight
		}
		if o.LeakageThreshold != nil {
			params.threshold = *o.LeakageThreshold
		}
		if o.HistogramBins != nil {
			params.histogramBins = *o.HistogramBins
		}
		if o.TopRoutes != nil {
			params.topRoutes = *o.TopRoutes
		}
	}

	if params.delayWeight < 0 || params.riskWeight < 0 || params.delayWeight+params.riskWeight <= 0 {
		return runParams{}, errors.New("pipeline: invalid score weights")
	}
	if params.threshold <= 0 || params.threshold > 1 {
		return runParams{}, errors.New("pipeline: leakage threshold must be in (0, 1]")
	}
	if params.histogramBins <= 0 {
		return runParams{}, errors.New("pipeline: histogram bins must be positive")
	}
	if params.topRoutes <= 0 {
		return runParams{}, errors.New("pipeline: top routes must be positive")
	}

	return params, nil
}

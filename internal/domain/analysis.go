package domain

import "time"

// Descriptive statistics for one numeric column. Missing values are
// excluded from the moments and counted separately.
type ColumnStats struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`

	// Degenerate marks columns with fewer than three values or zero
	// variance, where skewness is reported as zero.
	Degenerate bool `json:"degenerate,omitempty"`
}

// One equal-width histogram bin. Low is inclusive; High is exclusive
// except for the last bin, which includes the column maximum.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Equal-width histogram of one numeric column.
type DelayHistogram struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
}

// Share of shipments assigned one risk level.
type RiskShare struct {
	Level RiskLevel `json:"level"`
	Label string    `json:"label"`
	Count int       `json:"count"`
	Share float64   `json:"share"`
}

// Pearson correlation matrix over the numeric feature set.
// Values is indexed [i][j] following Columns order. Constant lists the
// zero-variance columns whose correlations are reported as zero.
type CorrelationMatrix struct {
	Columns  []string    `json:"columns"`
	Values   [][]float64 `json:"values"`
	Constant []string    `json:"constant,omitempty"`
}

// Correlation of one feature against the analysis target.
type Correlation struct {
	Feature string  `json:"feature"`
	R       float64 `json:"r"`
}

// A feature flagged as leaking the target.
type LeakFinding struct {
	Feature     string  `json:"feature"`
	Correlation float64 `json:"correlation"`
	Threshold   float64 `json:"threshold"`
}

// One weighted term from the delay reason text summary.
type TermWeight struct {
	Term      string  `json:"term"`
	Weight    float64 `json:"weight"`
	Documents int     `json:"documents"`
}

// Feature roles and encodings of the modeling dataset, written to the
// feature metadata artifact.
type FeatureMetadata struct {
	NumericFeatures      []string                  `json:"numeric_features"`
	CategoricalFeatures  []string                  `json:"categorical_features"`
	RegressionTarget     string                    `json:"regression_target"`
	ClassificationTarget string                    `json:"classification_target"`
	LabelEncodings       map[string]map[string]int `json:"label_encodings,omitempty"`
}

// AnalysisSnapshot is the complete output of one pipeline run. It is
// what the API serves, the result cache stores, and the report writer
// persists.
type AnalysisSnapshot struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	DatasetRows int       `json:"dataset_rows"`

	ColumnStats    []ColumnStats  `json:"column_stats"`
	DelayHistogram DelayHistogram `json:"delay_histogram"`
	DelaySkewness  float64        `json:"delay_skewness"`
	RiskBalance    []RiskShare    `json:"risk_balance"`

	Correlations    CorrelationMatrix `json:"correlations"`
	TopCorrelations []Correlation     `json:"top_correlations"`

	Leaks            []LeakFinding `json:"leaks"`
	ExcludedFeatures []string      `json:"excluded_features"`

	RouteRankings []RouteSummary `json:"route_rankings"`
	DelayTerms    []TermWeight   `json:"delay_terms"`

	FeatureMetadata FeatureMetadata `json:"feature_metadata"`

	Warnings []string `json:"warnings,omitempty"`
}

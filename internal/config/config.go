package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultDelayWeight       = 0.5
	DefaultRiskWeight        = 0.5
	DefaultTopRoutes         = 10
	DefaultMinRouteShipments = 1
	DefaultHistogramBins     = 30
	DefaultTopCorrelations   = 15
	DefaultLeakageThreshold  = 0.95
	DefaultMaxVocabulary     = 300
	DefaultTopTerms          = 20
	DefaultCacheTTL          = 15 * time.Minute
	DefaultReportDir         = "reports"
)

// Config is the analysis configuration loaded from analysis.yaml.
// Everything here tunes how a run is computed; connection settings for
// databases and external services stay in the environment.
type Config struct {
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Features     FeaturesConfig     `yaml:"features"`
	Leakage      LeakageConfig      `yaml:"leakage"`
	DelayReasons DelayReasonsConfig `yaml:"delay_reasons"`
	Cache        CacheConfig        `yaml:"cache"`
	Reports      ReportsConfig      `yaml:"reports"`
}

// AnalysisConfig tunes descriptive statistics and route ranking.
type AnalysisConfig struct {
	// DelayWeight and RiskWeight set the relative influence of average
	// delay and risk rate on the route score. They are normalized to
	// sum to one before scoring.
	DelayWeight float64 `yaml:"delay_weight"`
	RiskWeight  float64 `yaml:"risk_weight"`

	// TopRoutes caps how many ranked routes a snapshot reports.
	TopRoutes int `yaml:"top_routes"`

	// MinRouteShipments drops routes with fewer shipments from ranking.
	MinRouteShipments int `yaml:"min_route_shipments"`

	// HistogramBins sets the bin count of the delay distribution.
	HistogramBins int `yaml:"histogram_bins"`

	// TopCorrelations caps the strongest-pairs list in a snapshot.
	TopCorrelations int `yaml:"top_correlations"`
}

// FeaturesConfig tunes feature engineering.
type FeaturesConfig struct {
	// ScaleColumns lists the numeric columns standardized to zero mean
	// and unit variance. An empty list keeps the default set.
	ScaleColumns []string `yaml:"scale_columns"`
}

// LeakageConfig tunes target leakage detection.
type LeakageConfig struct {
	// Threshold is the absolute correlation above which a feature is
	// flagged as leaking the target.
	Threshold float64 `yaml:"threshold"`

	// Exclude lists feature names to drop from modeling regardless of
	// their measured correlation.
	Exclude []string `yaml:"exclude"`
}

// DelayReasonsConfig tunes the free-text delay reason summary.
type DelayReasonsConfig struct {
	// MaxVocabulary caps the TF-IDF vocabulary size.
	MaxVocabulary int `yaml:"max_vocabulary"`

	// TopTerms is how many highest-weight terms a snapshot reports.
	TopTerms int `yaml:"top_terms"`

	// ExtraStopwords are removed from delay reason text in addition to
	// the built-in English stopword list.
	ExtraStopwords []string `yaml:"extra_stopwords"`
}

// CacheConfig tunes snapshot caching.
type CacheConfig struct {
	// TTL is how long a cached snapshot stays valid.
	TTL time.Duration `yaml:"ttl"`
}

// ReportsConfig tunes report artifact output.
type ReportsConfig struct {
	// Dir is the directory report files are written into.
	Dir string `yaml:"dir"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config populated with default values. Callers that
// run without a config file use this directly.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			DelayWeight:       DefaultDelayWeight,
			RiskWeight:        DefaultRiskWeight,
			TopRoutes:         DefaultTopRoutes,
			MinRouteShipments: DefaultMinRouteShipments,
			HistogramBins:     DefaultHistogramBins,
			TopCorrelations:   DefaultTopCorrelations,
		},
		Leakage: LeakageConfig{
			Threshold: DefaultLeakageThreshold,
		},
		DelayReasons: DelayReasonsConfig{
			MaxVocabulary: DefaultMaxVocabulary,
			TopTerms:      DefaultTopTerms,
		},
		Cache: CacheConfig{
			TTL: DefaultCacheTTL,
		},
		Reports: ReportsConfig{
			Dir: DefaultReportDir,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Analysis.DelayWeight < 0 || cfg.Analysis.RiskWeight < 0 {
		return fmt.Errorf("analysis weights must be non-negative")
	}
	if cfg.Analysis.DelayWeight+cfg.Analysis.RiskWeight <= 0 {
		return fmt.Errorf("analysis weights must not both be zero")
	}
	if cfg.Analysis.TopRoutes <= 0 {
		return fmt.Errorf("analysis.top_routes must be positive")
	}
	if cfg.Analysis.MinRouteShipments < 1 {
		return fmt.Errorf("analysis.min_route_shipments must be at least 1")
	}
	if cfg.Analysis.HistogramBins <= 0 {
		return fmt.Errorf("analysis.histogram_bins must be positive")
	}
	if cfg.Analysis.TopCorrelations <= 0 {
		return fmt.Errorf("analysis.top_correlations must be positive")
	}
	if cfg.Leakage.Threshold <= 0 || cfg.Leakage.Threshold > 1 {
		return fmt.Errorf("leakage.threshold must be in (0, 1]")
	}
	if cfg.DelayReasons.MaxVocabulary <= 0 {
		return fmt.Errorf("delay_reasons.max_vocabulary must be positive")
	}
	if cfg.DelayReasons.TopTerms <= 0 {
		return fmt.Errorf("delay_reasons.top_terms must be positive")
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if cfg.Reports.Dir == "" {
		return fmt.Errorf("reports.dir must not be empty")
	}
	return nil
}

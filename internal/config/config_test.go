package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadValid(t *testing.T) {
	yaml := `
analysis:
  delay_weight: 0.7
  risk_weight: 0.3
  top_routes: 5
  histogram_bins: 20
leakage:
  threshold: 0.9
  exclude:
    - Customs_Delay_Days
cache:
  ttl: 5m
`
	cfg := loadFromString(t, yaml)

	if cfg.Analysis.DelayWeight != 0.7 {
		t.Errorf("delay_weight: got %v", cfg.Analysis.DelayWeight)
	}
	if cfg.Analysis.RiskWeight != 0.3 {
		t.Errorf("risk_weight: got %v", cfg.Analysis.RiskWeight)
	}
	if cfg.Analysis.TopRoutes != 5 {
		t.Errorf("top_routes: got %d", cfg.Analysis.TopRoutes)
	}
	if cfg.Analysis.HistogramBins != 20 {
		t.Errorf("histogram_bins: got %d", cfg.Analysis.HistogramBins)
	}
	if cfg.Leakage.Threshold != 0.9 {
		t.Errorf("leakage threshold: got %v", cfg.Leakage.Threshold)
	}
	if len(cfg.Leakage.Exclude) != 1 || cfg.Leakage.Exclude[0] != "Customs_Delay_Days" {
		t.Errorf("leakage exclude: got %v", cfg.Leakage.Exclude)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cache ttl: got %v", cfg.Cache.TTL)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadFromString(t, "analysis: {}\n")

	if cfg.Analysis.DelayWeight != DefaultDelayWeight {
		t.Errorf("default delay_weight: got %v, want %v", cfg.Analysis.DelayWeight, DefaultDelayWeight)
	}
	if cfg.Analysis.TopRoutes != DefaultTopRoutes {
		t.Errorf("default top_routes: got %d, want %d", cfg.Analysis.TopRoutes, DefaultTopRoutes)
	}
	if cfg.Analysis.HistogramBins != DefaultHistogramBins {
		t.Errorf("default histogram_bins: got %d, want %d", cfg.Analysis.HistogramBins, DefaultHistogramBins)
	}
	if cfg.Leakage.Threshold != DefaultLeakageThreshold {
		t.Errorf("default leakage threshold: got %v, want %v", cfg.Leakage.Threshold, DefaultLeakageThreshold)
	}
	if cfg.DelayReasons.MaxVocabulary != DefaultMaxVocabulary {
		t.Errorf("default max_vocabulary: got %d, want %d", cfg.DelayReasons.MaxVocabulary, DefaultMaxVocabulary)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("default cache ttl: got %v, want %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Reports.Dir != DefaultReportDir {
		t.Errorf("default reports dir: got %q, want %q", cfg.Reports.Dir, DefaultReportDir)
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"negative weight", "analysis:\n  delay_weight: -0.1\n"},
		{"zero weights", "analysis:\n  delay_weight: 0\n  risk_weight: 0\n"},
		{"zero top_routes", "analysis:\n  top_routes: -1\n"},
		{"threshold above one", "leakage:\n  threshold: 1.5\n"},
		{"zero ttl", "cache:\n  ttl: 0s\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := loadStringErr(t, c.yaml); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestGet(t *testing.T) {
	t.Setenv("ANALYTICS_TEST_KEY", "set")
	if got := Get("ANALYTICS_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("Get with env set: got %q", got)
	}
	if got := Get("ANALYTICS_TEST_KEY_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Get with env unset: got %q", got)
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}

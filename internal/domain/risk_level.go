package domain

import "math"

// Ordinal customs risk severity derived from the route risk index.
// The zero value means the index was missing or out of range, so an
// unset level is never mistaken for a real assessment.
type RiskLevel int

const (
	RiskUnknown RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// Bin edges for the route risk index. The index is expected in (0, 1];
// each bin is half-open on the left, matching the dataset's encoding.
const (
	riskLowUpper    = 0.33
	riskMediumUpper = 0.66
	riskHighUpper   = 1.0
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// RiskLevelFromIndex bins a route risk index into an ordinal level.
// Indices outside (0, 1] and NaN map to RiskUnknown.
func RiskLevelFromIndex(idx float64) RiskLevel {
	switch {
	case math.IsNaN(idx), idx <= 0, idx > riskHighUpper:
		return RiskUnknown
	case idx <= riskLowUpper:
		return RiskLow
	case idx <= riskMediumUpper:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// RiskLevels returns the assessed levels in ascending severity,
// excluding RiskUnknown.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh}
}

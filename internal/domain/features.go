package domain

import (
	"fmt"
	"time"
)

// Weight applied to the prior offense count when composing the
// compliance risk score.
const priorOffenseWeight = 0.3

// Engineered analysis features for one shipment. A FeatureRow is
// derived from a Shipment and never written back to it; the raw
// record stays exactly as ingested.
type FeatureRow struct {
	ShipmentID string
	RouteCode  string

	PlannedTransitDays float64
	ActualTransitDays  float64
	ArrivalDelayDays   float64
	CustomsDelayDays   float64

	ShipmentMonth   int
	ShipmentWeekday int

	HasPriorOffense     bool
	ComplianceRiskScore float64
	DocumentIssue       bool

	RouteRiskIndex float64
	RiskLevel      RiskLevel

	DeclaredValueUSD float64
	WeightKg         float64
}

// DeriveFeatures computes the engineered features for a shipment.
// It returns an error when any of the three dates is unset, since the
// transit and delay features are meaningless without them.
func DeriveFeatures(s *Shipment) (FeatureRow, error) {
	if s.ShipmentDate.IsZero() || s.EstimatedArrivalDate.IsZero() || s.ActualArrivalDate.IsZero() {
		return FeatureRow{}, fmt.Errorf("derive features: shipment %s: missing date fields", s.ShipmentID)
	}

	planned := daysBetween(s.ShipmentDate, s.EstimatedArrivalDate)
	actual := daysBetween(s.ShipmentDate, s.ActualArrivalDate)

	return FeatureRow{
		ShipmentID: s.ShipmentID,
		RouteCode:  s.RouteCode,

		PlannedTransitDays: planned,
		ActualTransitDays:  actual,
		ArrivalDelayDays:   actual - planned,
		CustomsDelayDays:   s.CustomsDelayDays,

		ShipmentMonth:   int(s.ShipmentDate.Month()),
		ShipmentWeekday: mondayWeekday(s.ShipmentDate),

		HasPriorOffense:     s.PriorOffenseCount > 0,
		ComplianceRiskScore: (1 - s.ComplianceScore) + priorOffenseWeight*float64(s.PriorOffenseCount),
		DocumentIssue:       s.DocumentStatus == "Missing" || s.DocumentStatus == "Error",

		RouteRiskIndex: s.RouteRiskIndex,
		RiskLevel:      RiskLevelFromIndex(s.RouteRiskIndex),

		DeclaredValueUSD: s.DeclaredValueUSD,
		WeightKg:         s.WeightKg,
	}, nil
}

// daysBetween returns the whole-day difference between two timestamps,
// ignoring the time-of-day component.
func daysBetween(from, to time.Time) float64 {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return t.Sub(f).Hours() / 24
}

// mondayWeekday indexes weekdays with Monday as 0 and Sunday as 6.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

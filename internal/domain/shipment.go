package domain

import "time"

// Represents a single cross-border shipment record.
// A Shipment carries the raw declaration fields captured at export time
// plus the customs outcome fields recorded on arrival. LPI enrichment
// fields are populated later from external indicator data and stay nil
// until an enrichment pass runs.
type Shipment struct {
	ShipmentID           string
	ShipmentDate         time.Time
	EstimatedArrivalDate time.Time
	ActualArrivalDate    time.Time

	OriginCountry      string
	DestinationCountry string
	TransportMode      string
	CarrierName        string
	RouteCode          string
	CommodityType      string
	TariffCategory     string
	InspectionType     string
	DocumentStatus     string
	DelayReason        string

	DeclaredValueUSD  float64
	WeightKg          float64
	ComplianceScore   float64
	PriorOffenseCount int
	RouteRiskIndex    float64
	CustomsDelayDays  float64

	OriginLPI      LPIProfile
	DestinationLPI LPIProfile

	RouteLPIAverage        *float64
	RouteLPIDifference     *float64
	RouteCustomsLPIAverage *float64
	RouteInfrastructureGap *float64
}

// Logistics Performance Index scores for one country.
// All components are on the World Bank 1 to 5 scale; nil means not resolved.
type LPIProfile struct {
	Overall        *float64
	Customs        *float64
	Infrastructure *float64
	Logistics      *float64
	Tracking       *float64
	Timeliness     *float64
}

// Complete reports whether every LPI component has been resolved.
func (p LPIProfile) Complete() bool {
	return p.Overall != nil && p.Customs != nil && p.Infrastructure != nil &&
		p.Logistics != nil && p.Tracking != nil && p.Timeliness != nil
}

// Enriched reports whether both country profiles and all route-level
// LPI aggregates are present on the shipment.
func (s *Shipment) Enriched() bool {
	return s.OriginLPI.Complete() && s.DestinationLPI.Complete() &&
		s.RouteLPIAverage != nil && s.RouteLPIDifference != nil &&
		s.RouteCustomsLPIAverage != nil && s.RouteInfrastructureGap != nil
}

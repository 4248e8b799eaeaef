package repositories

import (
	"customs-analytics-service/internal/domain"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Column order shared by both SQL dialects. Scan and argument helpers
// below must stay aligned with this list.
var shipmentColumns = []string{
	"shipment_id",
	"shipment_date",
	"estimated_arrival_date",
	"actual_arrival_date",
	"origin_country",
	"destination_country",
	"transport_mode",
	"carrier_name",
	"route_code",
	"commodity_type",
	"tariff_category",
	"inspection_type",
	"document_status",
	"delay_reason",
	"declared_value_usd",
	"weight_kg",
	"compliance_score",
	"prior_offense_count",
	"route_risk_index",
	"customs_delay_days",
	"origin_lpi_overall",
	"origin_lpi_customs",
	"origin_lpi_infrastructure",
	"origin_lpi_logistics",
	"origin_lpi_tracking",
	"origin_lpi_timeliness",
	"destination_lpi_overall",
	"destination_lpi_customs",
	"destination_lpi_infrastructure",
	"destination_lpi_logistics",
	"destination_lpi_tracking",
	"destination_lpi_timeliness",
	"route_lpi_average",
	"route_lpi_difference",
	"route_customs_lpi_average",
	"route_infrastructure_gap",
}

func shipmentColumnList() string {
	return strings.Join(shipmentColumns, ", ")
}

// Build the insert arguments for one shipment, in shipmentColumns order.
func shipmentArgs(s *domain.Shipment) []any {
	return []any{
		s.ShipmentID,
		s.ShipmentDate.UTC().Format(time.RFC3339),
		s.EstimatedArrivalDate.UTC().Format(time.RFC3339),
		s.ActualArrivalDate.UTC().Format(time.RFC3339),
		s.OriginCountry,
		s.DestinationCountry,
		s.TransportMode,
		s.CarrierName,
		s.RouteCode,
		s.CommodityType,
		s.TariffCategory,
		s.InspectionType,
		s.DocumentStatus,
		s.DelayReason,
		s.DeclaredValueUSD,
		s.WeightKg,
		s.ComplianceScore,
		s.PriorOffenseCount,
		s.RouteRiskIndex,
		s.CustomsDelayDays,
		nullFloat(s.OriginLPI.Overall),
		nullFloat(s.OriginLPI.Customs),
		nullFloat(s.OriginLPI.Infrastructure),
		nullFloat(s.OriginLPI.Logistics),
		nullFloat(s.OriginLPI.Tracking),
		nullFloat(s.OriginLPI.Timeliness),
		nullFloat(s.DestinationLPI.Overall),
		nullFloat(s.DestinationLPI.Customs),
		nullFloat(s.DestinationLPI.Infrastructure),
		nullFloat(s.DestinationLPI.Logistics),
		nullFloat(s.DestinationLPI.Tracking),
		nullFloat(s.DestinationLPI.Timeliness),
		nullFloat(s.RouteLPIAverage),
		nullFloat(s.RouteLPIDifference),
		nullFloat(s.RouteCustomsLPIAverage),
		nullFloat(s.RouteInfrastructureGap),
	}
}

// Scan one row produced by a SELECT over shipmentColumns.
func scanShipment(rows *sql.Rows) (*domain.Shipment, error) {
	var s domain.Shipment
	var shipmentDate, estimated, actual string
	var originLPI, destinationLPI [6]sql.NullFloat64
	var routeAvg, routeDiff, customsAvg, infraGap sql.NullFloat64

	err := rows.Scan(
		&s.ShipmentID,
		&shipmentDate,
		&estimated,
		&actual,
		&s.OriginCountry,
		&s.DestinationCountry,
		&s.TransportMode,
		&s.CarrierName,
		&s.RouteCode,
		&s.CommodityType,
		&s.TariffCategory,
		&s.InspectionType,
		&s.DocumentStatus,
		&s.DelayReason,
		&s.DeclaredValueUSD,
		&s.WeightKg,
		&s.ComplianceScore,
		&s.PriorOffenseCount,
		&s.RouteRiskIndex,
		&s.CustomsDelayDays,
		&originLPI[0], &originLPI[1], &originLPI[2], &originLPI[3], &originLPI[4], &originLPI[5],
		&destinationLPI[0], &destinationLPI[1], &destinationLPI[2], &destinationLPI[3], &destinationLPI[4], &destinationLPI[5],
		&routeAvg,
		&routeDiff,
		&customsAvg,
		&infraGap,
	)
	if err != nil {
		return nil, err
	}

	if s.ShipmentDate, err = parseStoredDate(shipmentDate); err != nil {
		return nil, fmt.Errorf("shipment_date: %w", err)
	}
	if s.EstimatedArrivalDate, err = parseStoredDate(estimated); err != nil {
		return nil, fmt.Errorf("estimated_arrival_date: %w", err)
	}
	if s.ActualArrivalDate, err = parseStoredDate(actual); err != nil {
		return nil, fmt.Errorf("actual_arrival_date: %w", err)
	}

	s.OriginLPI = lpiProfile(originLPI)
	s.DestinationLPI = lpiProfile(destinationLPI)
	s.RouteLPIAverage = floatPtr(routeAvg)
	s.RouteLPIDifference = floatPtr(routeDiff)
	s.RouteCustomsLPIAverage = floatPtr(customsAvg)
	s.RouteInfrastructureGap = floatPtr(infraGap)

	return &s, nil
}

func lpiProfile(v [6]sql.NullFloat64) domain.LPIProfile {
	return domain.LPIProfile{
		Overall:        floatPtr(v[0]),
		Customs:        floatPtr(v[1]),
		Infrastructure: floatPtr(v[2]),
		Logistics:      floatPtr(v[3]),
		Tracking:       floatPtr(v[4]),
		Timeliness:     floatPtr(v[5]),
	}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func parseStoredDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized stored date %q", raw)
	}
	return t, nil
}

package dto

import "time"

type ShipmentResponse struct {
	ShipmentID           string    `json:"shipment_id"`
	ShipmentDate         time.Time `json:"shipment_date"`
	EstimatedArrivalDate time.Time `json:"estimated_arrival_date"`
	ActualArrivalDate    time.Time `json:"actual_arrival_date"`
	OriginCountry        string    `json:"origin_country"`
	DestinationCountry   string    `json:"destination_country"`
	TransportMode        string    `json:"transport_mode"`
	CarrierName          string    `json:"carrier_name"`
	RouteCode            string    `json:"route_code"`
	CommodityType        string    `json:"commodity_type"`
	TariffCategory       string    `json:"tariff_category"`
	InspectionType       string    `json:"inspection_type"`
	DocumentStatus       string    `json:"document_status"`
	DelayReason          string    `json:"delay_reason,omitempty"`
	DeclaredValueUSD     float64   `json:"declared_value_usd"`
	WeightKg             float64   `json:"weight_kg"`
	ComplianceScore      float64   `json:"compliance_score"`
	PriorOffenseCount    int       `json:"prior_offense_count"`
	RouteRiskIndex       float64   `json:"route_risk_index"`
	CustomsDelayDays     float64   `json:"customs_delay_days"`

	RouteLPIAverage    *float64 `json:"route_lpi_average,omitempty"`
	RouteLPIDifference *float64 `json:"route_lpi_difference,omitempty"`
	Enriched           bool     `json:"enriched"`
}

type ListShipmentsResponse struct {
	Shipments []ShipmentResponse `json:"shipments"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

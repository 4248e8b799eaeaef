package services

import (
	"customs-analytics-service/internal/domain"
	"fmt"
	"math"
	"sort"
)

// Column names of the numeric feature matrix. They follow the dataset's
// header convention so stats and reports line up with the source CSV.
const (
	ColDeclaredValueUSD  = "Declared_Value_USD"
	ColWeightKg          = "Weight_kg"
	ColComplianceScore   = "Compliance_Score"
	ColPriorOffenseCount = "Prior_Offense_Count"
	ColRouteRiskIndex    = "Route_Risk_Index"
	ColCustomsDelayDays  = "Customs_Delay_Days"

	ColPlannedTransitDays  = "Planned_Transit_Days"
	ColActualTransitDays   = "Actual_Transit_Days"
	ColArrivalDelayDays    = "Arrival_Delay_Days"
	ColShipmentMonth       = "Shipment_Month"
	ColShipmentWeekday     = "Shipment_Weekday"
	ColHasPriorOffense     = "Has_Prior_Offense"
	ColComplianceRiskScore = "Compliance_Risk_Score"
	ColDocumentIssue       = "Document_Issue"
	ColRiskLevel           = "Risk_Level"

	ColOriginCountry      = "Origin_Country"
	ColDestinationCountry = "Destination_Country"
	ColTransportMode      = "Transport_Mode"
	ColCarrierName        = "Carrier_Name"
	ColRouteCode          = "Route_Code"
	ColCommodityType      = "Commodity_Type"
	ColTariffCategory     = "Tariff_Category"
	ColInspectionType     = "Inspection_Type"
	ColDocumentStatus     = "Document_Status"

	ColOriginLPIOverall        = "Origin_LPI_Overall"
	ColOriginLPICustoms        = "Origin_LPI_Customs"
	ColOriginLPIInfrastructure = "Origin_LPI_Infrastructure"
	ColOriginLPILogistics      = "Origin_LPI_Logistics"
	ColOriginLPITracking       = "Origin_LPI_Tracking"
	ColOriginLPITimeliness     = "Origin_LPI_Timeliness"

	ColDestinationLPIOverall        = "Destination_LPI_Overall"
	ColDestinationLPICustoms        = "Destination_LPI_Customs"
	ColDestinationLPIInfrastructure = "Destination_LPI_Infrastructure"
	ColDestinationLPILogistics      = "Destination_LPI_Logistics"
	ColDestinationLPITracking       = "Destination_LPI_Tracking"
	ColDestinationLPITimeliness     = "Destination_LPI_Timeliness"

	ColRouteLPIAverage        = "Route_LPI_Average"
	ColRouteLPIDifference     = "Route_LPI_Difference"
	ColRouteCustomsLPIAverage = "Route_Customs_LPI_Average"
	ColRouteInfrastructureGap = "Route_Infrastructure_Gap"
)

// Matrix is the column-oriented numeric dataset an analysis run works
// on. Every column has exactly Rows entries; missing values are NaN.
type Matrix struct {
	Columns []string
	Data    map[string][]float64
	Rows    int
}

var categoricalFields = []struct {
	name string
	get  func(*domain.Shipment) string
}{
	{ColOriginCountry, func(s *domain.Shipment) string { return s.OriginCountry }},
	{ColDestinationCountry, func(s *domain.Shipment) string { return s.DestinationCountry }},
	{ColTransportMode, func(s *domain.Shipment) string { return s.TransportMode }},
	{ColCarrierName, func(s *domain.Shipment) string { return s.CarrierName }},
	{ColRouteCode, func(s *domain.Shipment) string { return s.RouteCode }},
	{ColCommodityType, func(s *domain.Shipment) string { return s.CommodityType }},
	{ColTariffCategory, func(s *domain.Shipment) string { return s.TariffCategory }},
	{ColInspectionType, func(s *domain.Shipment) string { return s.InspectionType }},
	{ColDocumentStatus, func(s *domain.Shipment) string { return s.DocumentStatus }},
}

var lpiFields = []struct {
	name string
	get  func(*domain.Shipment) *float64
}{
	{ColOriginLPIOverall, func(s *domain.Shipment) *float64 { return s.OriginLPI.Overall }},
	{ColOriginLPICustoms, func(s *domain.Shipment) *float64 { return s.OriginLPI.Customs }},
	{ColOriginLPIInfrastructure, func(s *domain.Shipment) *float64 { return s.OriginLPI.Infrastructure }},
	{ColOriginLPILogistics, func(s *domain.Shipment) *float64 { return s.OriginLPI.Logistics }},
	{ColOriginLPITracking, func(s *domain.Shipment) *float64 { return s.OriginLPI.Tracking }},
	{ColOriginLPITimeliness, func(s *domain.Shipment) *float64 { return s.OriginLPI.Timeliness }},
	{ColDestinationLPIOverall, func(s *domain.Shipment) *float64 { return s.DestinationLPI.Overall }},
	{ColDestinationLPICustoms, func(s *domain.Shipment) *float64 { return s.DestinationLPI.Customs }},
	{ColDestinationLPIInfrastructure, func(s *domain.Shipment) *float64 { return s.DestinationLPI.Infrastructure }},
	{ColDestinationLPILogistics, func(s *domain.Shipment) *float64 { return s.DestinationLPI.Logistics }},
	{ColDestinationLPITracking, func(s *domain.Shipment) *float64 { return s.DestinationLPI.Tracking }},
	{ColDestinationLPITimeliness, func(s *domain.Shipment) *float64 { return s.DestinationLPI.Timeliness }},
	{ColRouteLPIAverage, func(s *domain.Shipment) *float64 { return s.RouteLPIAverage }},
	{ColRouteLPIDifference, func(s *domain.Shipment) *float64 { return s.RouteLPIDifference }},
	{ColRouteCustomsLPIAverage, func(s *domain.Shipment) *float64 { return s.RouteCustomsLPIAverage }},
	{ColRouteInfrastructureGap, func(s *domain.Shipment) *float64 { return s.RouteInfrastructureGap }},
}

// CategoricalColumns lists the label-encoded string columns in matrix
// order.
func CategoricalColumns() []string {
	out := make([]string, 0, len(categoricalFields))
	for _, f := range categoricalFields {
		out = append(out, f.name)
	}
	return out
}

// DefaultScaleColumns is the numeric column set standardized before
// modeling when the config does not override it.
func DefaultScaleColumns() []string {
	return []string{
		ColDeclaredValueUSD,
		ColWeightKg,
		ColComplianceScore,
		ColPriorOffenseCount,
		ColRouteRiskIndex,
		ColPlannedTransitDays,
		ColActualTransitDays,
		ColComplianceRiskScore,
	}
}

// BuildMatrix assembles the numeric feature matrix from shipments and
// their derived feature rows, which must be parallel slices. String
// columns are label-encoded with codes assigned in sorted value order;
// the encodings are returned alongside the matrix. Booleans become 0/1,
// an unknown risk level becomes NaN, and LPI columns appear only when
// at least one shipment carries a value.
func BuildMatrix(shipments []*domain.Shipment, rows []domain.FeatureRow) (Matrix, map[string]map[string]int, error) {
	if len(shipments) != len(rows) {
		return Matrix{}, nil, fmt.Errorf("build matrix: %d shipments but %d feature rows", len(shipments), len(rows))
	}

	n := len(shipments)
	m := Matrix{Data: make(map[string][]float64), Rows: n}

	add := func(name string, get func(i int) float64) {
		col := make([]float64, n)
		for i := range col {
			col[i] = get(i)
		}
		m.Columns = append(m.Columns, name)
		m.Data[name] = col
	}

	add(ColDeclaredValueUSD, func(i int) float64 { return shipments[i].DeclaredValueUSD })
	add(ColWeightKg, func(i int) float64 { return shipments[i].WeightKg })
	add(ColComplianceScore, func(i int) float64 { return shipments[i].ComplianceScore })
	add(ColPriorOffenseCount, func(i int) float64 { return float64(shipments[i].PriorOffenseCount) })
	add(ColRouteRiskIndex, func(i int) float64 { return shipments[i].RouteRiskIndex })
	add(ColCustomsDelayDays, func(i int) float64 { return shipments[i].CustomsDelayDays })

	add(ColPlannedTransitDays, func(i int) float64 { return rows[i].PlannedTransitDays })
	add(ColActualTransitDays, func(i int) float64 { return rows[i].ActualTransitDays })
	add(ColArrivalDelayDays, func(i int) float64 { return rows[i].ArrivalDelayDays })
	add(ColShipmentMonth, func(i int) float64 { return float64(rows[i].ShipmentMonth) })
	add(ColShipmentWeekday, func(i int) float64 { return float64(rows[i].ShipmentWeekday) })
	add(ColHasPriorOffense, func(i int) float64 { return boolToFloat(rows[i].HasPriorOffense) })
	add(ColComplianceRiskScore, func(i int) float64 { return rows[i].ComplianceRiskScore })
	add(ColDocumentIssue, func(i int) float64 { return boolToFloat(rows[i].DocumentIssue) })
	add(ColRiskLevel, func(i int) float64 {
		if rows[i].RiskLevel == domain.RiskUnknown {
			return math.NaN()
		}
		return float64(rows[i].RiskLevel)
	})

	encodings := make(map[string]map[string]int, len(categoricalFields))
	for _, f := range categoricalFields {
		values := make([]string, n)
		for i, s := range shipments {
			values[i] = f.get(s)
		}
		enc := encodeLabels(values)
		encodings[f.name] = enc

		get := f.get
		add(f.name, func(i int) float64 { return float64(enc[get(shipments[i])]) })
	}

	for _, f := range lpiFields {
		present := false
		col := make([]float64, n)
		for i, s := range shipments {
			if p := f.get(s); p != nil {
				col[i] = *p
				present = true
			} else {
				col[i] = math.NaN()
			}
		}
		if present {
			m.Columns = append(m.Columns, f.name)
			m.Data[f.name] = col
		}
	}

	return m, encodings, nil
}

// ScaleColumns standardizes the named columns in place to zero mean and
// unit variance, computed over the non-missing values. Zero-variance
// columns are set to all zeros and returned in flagged; names absent
// from the matrix are returned in skipped. Both lists come back sorted.
func ScaleColumns(m Matrix, cols []string) (flagged, skipped []string) {
	for _, name := range cols {
		col, ok := m.Data[name]
		if !ok {
			skipped = append(skipped, name)
			continue
		}

		var sum float64
		var count int
		for _, v := range col {
			if !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			flagged = append(flagged, name)
			continue
		}
		mean := sum / float64(count)

		var ss float64
		for _, v := range col {
			if !math.IsNaN(v) {
				ss += (v - mean) * (v - mean)
			}
		}
		std := math.Sqrt(ss / float64(count))

		if std == 0 {
			for i, v := range col {
				if !math.IsNaN(v) {
					col[i] = 0
				}
			}
			flagged = append(flagged, name)
			continue
		}

		for i, v := range col {
			if !math.IsNaN(v) {
				col[i] = (v - mean) / std
			}
		}
	}

	sort.Strings(flagged)
	sort.Strings(skipped)
	return flagged, skipped
}

// BuildFeatureMetadata records feature roles and encodings for the
// metadata artifact. Excluded features are removed from the role lists
// but their encodings stay, since they describe the dataset as built.
func BuildFeatureMetadata(scaled []string, encodings map[string]map[string]int, excluded []string) domain.FeatureMetadata {
	drop := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		drop[name] = true
	}

	keep := func(names []string) []string {
		out := make([]string, 0, len(names))
		for _, name := range names {
			if !drop[name] {
				out = append(out, name)
			}
		}
		return out
	}

	return domain.FeatureMetadata{
		NumericFeatures:      keep(scaled),
		CategoricalFeatures:  keep(CategoricalColumns()),
		RegressionTarget:     ColArrivalDelayDays,
		ClassificationTarget: ColRiskLevel,
		LabelEncodings:       encodings,
	}
}

// encodeLabels assigns integer codes to the distinct values of a string
// column, in sorted value order so codes are stable across runs.
func encodeLabels(values []string) map[string]int {
	uniq := make(map[string]bool, len(values))
	for _, v := range values {
		uniq[v] = true
	}

	sorted := make([]string, 0, len(uniq))
	for v := range uniq {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	enc := make(map[string]int, len(sorted))
	for i, v := range sorted {
		enc[v] = i
	}
	return enc
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

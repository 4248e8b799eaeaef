package ingest

import (
	"customs-analytics-service/internal/domain"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/go-playground/validator/v10"
)

// Column headers of the shipments CSV export.
const (
	colShipmentID           = "Shipment_ID"
	colShipmentDate         = "Shipment_Date"
	colEstimatedArrivalDate = "Estimated_Arrival_Date"
	colActualArrivalDate    = "Actual_Arrival_Date"
	colOriginCountry        = "Origin_Country"
	colDestinationCountry   = "Destination_Country"
	colTransportMode        = "Transport_Mode"
	colCarrierName          = "Carrier_Name"
	colRouteCode            = "Route_Code"
	colCommodityType        = "Commodity_Type"
	colTariffCategory       = "Tariff_Category"
	colInspectionType       = "Inspection_Type"
	colDocumentStatus       = "Document_Status"
	colDelayReason          = "Delay_Reason"
	colDeclaredValueUSD     = "Declared_Value_USD"
	colWeightKg             = "Weight_kg"
	colComplianceScore      = "Compliance_Score"
	colPriorOffenseCount    = "Prior_Offense_Count"
	colRouteRiskIndex       = "Route_Risk_Index"
	colCustomsDelayDays     = "Customs_Delay_Days"
)

var requiredColumns = []string{
	colShipmentID,
	colShipmentDate,
	colEstimatedArrivalDate,
	colActualArrivalDate,
	colOriginCountry,
	colDestinationCountry,
	colTransportMode,
	colCarrierName,
	colRouteCode,
	colCommodityType,
	colTariffCategory,
	colInspectionType,
	colDocumentStatus,
	colDelayReason,
	colDeclaredValueUSD,
	colWeightKg,
	colComplianceScore,
	colPriorOffenseCount,
	colRouteRiskIndex,
	colCustomsDelayDays,
}

// Optional columns carried by exports that were already LPI-enriched.
var lpiColumns = []struct {
	name string
	set  func(*domain.Shipment, *float64)
}{
	{"Origin_LPI_Overall", func(s *domain.Shipment, v *float64) { s.OriginLPI.Overall = v }},
	{"Origin_LPI_Customs", func(s *domain.Shipment, v *float64) { s.OriginLPI.Customs = v }},
	{"Origin_LPI_Infrastructure", func(s *domain.Shipment, v *float64) { s.OriginLPI.Infrastructure = v }},
	{"Origin_LPI_Logistics", func(s *domain.Shipment, v *float64) { s.OriginLPI.Logistics = v }},
	{"Origin_LPI_Tracking", func(s *domain.Shipment, v *float64) { s.OriginLPI.Tracking = v }},
	{"Origin_LPI_Timeliness", func(s *domain.Shipment, v *float64) { s.OriginLPI.Timeliness = v }},
	{"Destination_LPI_Overall", func(s *domain.Shipment, v *float64) { s.DestinationLPI.Overall = v }},
	{"Destination_LPI_Customs", func(s *domain.Shipment, v *float64) { s.DestinationLPI.Customs = v }},
	{"Destination_LPI_Infrastructure", func(s *domain.Shipment, v *float64) { s.DestinationLPI.Infrastructure = v }},
	{"Destination_LPI_Logistics", func(s *domain.Shipment, v *float64) { s.DestinationLPI.Logistics = v }},
	{"Destination_LPI_Tracking", func(s *domain.Shipment, v *float64) { s.DestinationLPI.Tracking = v }},
	{"Destination_LPI_Timeliness", func(s *domain.Shipment, v *float64) { s.DestinationLPI.Timeliness = v }},
	{"Route_LPI_Average", func(s *domain.Shipment, v *float64) { s.RouteLPIAverage = v }},
	{"Route_LPI_Difference", func(s *domain.Shipment, v *float64) { s.RouteLPIDifference = v }},
	{"Route_Customs_LPI_Average", func(s *domain.Shipment, v *float64) { s.RouteCustomsLPIAverage = v }},
	{"Route_Infrastructure_Gap", func(s *domain.Shipment, v *float64) { s.RouteInfrastructureGap = v }},
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05"}

// maxSkipReasons caps how many per-row reasons a LoadResult carries.
const maxSkipReasons = 10

// record holds the parsed fields that get structural validation before
// a row becomes a Shipment.
type record struct {
	ShipmentID         string  `validate:"required"`
	OriginCountry      string  `validate:"required"`
	DestinationCountry string  `validate:"required"`
	RouteCode          string  `validate:"required"`
	DeclaredValueUSD   float64 `validate:"gte=0"`
	WeightKg           float64 `validate:"gte=0"`
	ComplianceScore    float64 `validate:"gte=0,lte=1"`
	PriorOffenseCount  int     `validate:"gte=0"`
	CustomsDelayDays   float64 `validate:"gte=0"`
}

// LoadResult reports what a CSV load produced.
type LoadResult struct {
	Shipments []*domain.Shipment
	Loaded    int
	Skipped   int

	// Reasons holds up to maxSkipReasons row-level skip explanations.
	Reasons []string
}

// Loader parses shipments CSV exports. Invalid rows are skipped and
// counted, never fatal; only a missing required column aborts a load.
// The loader remembers shipment IDs across calls, so overlapping
// exports do not produce duplicates.
type Loader struct {
	validate *validator.Validate
	dedup    *Deduper
}

func NewLoader() *Loader {
	return &Loader{
		validate: validator.New(),
		dedup:    NewDeduper(time.Hour, 0),
	}
}

// LoadCSVFile opens and loads a CSV file from disk.
func (l *Loader) LoadCSVFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load csv: open %q: %w", path, err)
	}
	defer f.Close()

	res, err := l.LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load csv %q: %w", path, err)
	}
	return res, nil
}

// LoadCSV parses shipments from r. Every column is read as a string
// and parsed explicitly, so a stray value cannot flip a whole column's
// type.
func (l *Loader) LoadCSV(r io.Reader) (*LoadResult, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load csv: read: %w", df.Err)
	}

	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}
	var missing []string
	for _, name := range requiredColumns {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("load csv: missing required columns: %s", strings.Join(missing, ", "))
	}

	cols := make(map[string][]string, len(requiredColumns)+len(lpiColumns))
	for _, name := range requiredColumns {
		cols[name] = df.Col(name).Records()
	}
	for _, c := range lpiColumns {
		if have[c.name] {
			cols[c.name] = df.Col(c.name).Records()
		}
	}

	res := &LoadResult{}
	for i := 0; i < df.Nrow(); i++ {
		s, err := l.buildShipment(cols, i)
		if err != nil {
			res.Skipped++
			if len(res.Reasons) < maxSkipReasons {
				// +2: rows are 1-based and the header is line 1.
				res.Reasons = append(res.Reasons, fmt.Sprintf("row %d: %v", i+2, err))
			}
			continue
		}
		res.Shipments = append(res.Shipments, s)
		res.Loaded++
	}

	if res.Skipped > maxSkipReasons {
		res.Reasons = append(res.Reasons, fmt.Sprintf("%d more rows skipped", res.Skipped-maxSkipReasons))
	}

	return res, nil
}

func (l *Loader) buildShipment(cols map[string][]string, i int) (*domain.Shipment, error) {
	get := func(name string) string {
		return strings.TrimSpace(cols[name][i])
	}

	shipmentDate, err := parseDate(get(colShipmentDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", colShipmentDate, err)
	}
	estimated, err := parseDate(get(colEstimatedArrivalDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", colEstimatedArrivalDate, err)
	}
	actual, err := parseDate(get(colActualArrivalDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", colActualArrivalDate, err)
	}

	declared, err := parseFloat(get(colDeclaredValueUSD), colDeclaredValueUSD)
	if err != nil {
		return nil, err
	}
	weight, err := parseFloat(get(colWeightKg), colWeightKg)
	if err != nil {
		return nil, err
	}
	compliance, err := parseFloat(get(colComplianceScore), colComplianceScore)
	if err != nil {
		return nil, err
	}
	riskIndex, err := parseFloat(get(colRouteRiskIndex), colRouteRiskIndex)
	if err != nil {
		return nil, err
	}
	customsDelay, err := parseFloat(get(colCustomsDelayDays), colCustomsDelayDays)
	if err != nil {
		return nil, err
	}
	offenses, err := strconv.Atoi(get(colPriorOffenseCount))
	if err != nil {
		return nil, fmt.Errorf("%s: bad value %q", colPriorOffenseCount, get(colPriorOffenseCount))
	}

	rec := record{
		ShipmentID:         get(colShipmentID),
		OriginCountry:      get(colOriginCountry),
		DestinationCountry: get(colDestinationCountry),
		RouteCode:          get(colRouteCode),
		DeclaredValueUSD:   declared,
		WeightKg:           weight,
		ComplianceScore:    compliance,
		PriorOffenseCount:  offenses,
		CustomsDelayDays:   customsDelay,
	}
	if err := l.validate.Struct(&rec); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}

	if !l.dedup.ShouldProcess(rec.ShipmentID) {
		return nil, fmt.Errorf("duplicate shipment ID %q", rec.ShipmentID)
	}

	s := &domain.Shipment{
		ShipmentID:           rec.ShipmentID,
		ShipmentDate:         shipmentDate,
		EstimatedArrivalDate: estimated,
		ActualArrivalDate:    actual,
		OriginCountry:        rec.OriginCountry,
		DestinationCountry:   rec.DestinationCountry,
		TransportMode:        get(colTransportMode),
		CarrierName:          get(colCarrierName),
		RouteCode:            rec.RouteCode,
		CommodityType:        get(colCommodityType),
		TariffCategory:       get(colTariffCategory),
		InspectionType:       get(colInspectionType),
		DocumentStatus:       get(colDocumentStatus),
		DelayReason:          get(colDelayReason),
		DeclaredValueUSD:     rec.DeclaredValueUSD,
		WeightKg:             rec.WeightKg,
		ComplianceScore:      rec.ComplianceScore,
		PriorOffenseCount:    rec.PriorOffenseCount,
		RouteRiskIndex:       riskIndex,
		CustomsDelayDays:     rec.CustomsDelayDays,
	}

	for _, c := range lpiColumns {
		records, ok := cols[c.name]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(records[i])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad value %q", c.name, raw)
		}
		c.set(s, &v)
	}

	return s, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseFloat(raw, column string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad value %q", column, raw)
	}
	return v, nil
}

package handlers

import (
	"customs-analytics-service/internal/api/dto"
	"customs-analytics-service/internal/domain"
	"customs-analytics-service/internal/ports"
	"log"
	"net/http"
	"strconv"
)

const (
	defaultShipmentLimit = 100
	maxShipmentLimit     = 1000
)

// ShipmentHandler exposes read-only shipment retrieval endpoints.
type ShipmentHandler struct {
	Repo ports.ShipmentRepository
}

func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit, err := queryInt(r, "limit", defaultShipmentLimit)
	if err != nil || limit < 1 || limit > maxShipmentLimit {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 1000")
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, r, http.StatusBadRequest, "offset must be non-negative")
		return
	}

	total, err := h.Repo.CountShipments(r.Context())
	if err != nil {
		log.Printf("count shipments failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	shipments, err := h.Repo.ListShipments(r.Context(), limit, offset)
	if err != nil {
		log.Printf("list shipments failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListShipmentsResponse{
		Shipments: make([]dto.ShipmentResponse, 0, len(shipments)),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
	for _, s := range shipments {
		res.Shipments = append(res.Shipments, toShipmentResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toShipmentResponse(s *domain.Shipment) dto.ShipmentResponse {
	return dto.ShipmentResponse{
		ShipmentID:           s.ShipmentID,
		ShipmentDate:         s.ShipmentDate,
		EstimatedArrivalDate: s.EstimatedArrivalDate,
		ActualArrivalDate:    s.ActualArrivalDate,
		OriginCountry:        s.OriginCountry,
		DestinationCountry:   s.DestinationCountry,
		TransportMode:        s.TransportMode,
		CarrierName:          s.CarrierName,
		RouteCode:            s.RouteCode,
		CommodityType:        s.CommodityType,
		TariffCategory:       s.TariffCategory,
		InspectionType:       s.InspectionType,
		DocumentStatus:       s.DocumentStatus,
		DelayReason:          s.DelayReason,
		DeclaredValueUSD:     s.DeclaredValueUSD,
		WeightKg:             s.WeightKg,
		ComplianceScore:      s.ComplianceScore,
		PriorOffenseCount:    s.PriorOffenseCount,
		RouteRiskIndex:       s.RouteRiskIndex,
		CustomsDelayDays:     s.CustomsDelayDays,
		RouteLPIAverage:      s.RouteLPIAverage,
		RouteLPIDifference:   s.RouteLPIDifference,
		Enriched:             s.Enriched(),
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"greenride/internal/domain"
	"greenride/internal/middleware"
	"greenride/internal/service"
)

// TripHandler handles HTTP requests for trips: cancellation, live
// views, and history.
type TripHandler struct {
	tripService      *service.TripService
	analyticsService *service.AnalyticsService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, analyticsService *service.AnalyticsService) *TripHandler {
	return &TripHandler{
		tripService:      tripService,
		analyticsService: analyticsService,
	}
}

// CancelTripRequest is the HTTP request body for cancelling a trip.
type CancelTripRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	var req CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.tripService.Cancel(c.Request.Context(), c.Param("id"), middleware.CallerID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// LiveDriver handles GET /v1/trips/:id/live-driver
func (h *TripHandler) LiveDriver(c *gin.Context) {
	view, err := h.tripService.LiveDriver(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, view)
}

// LiveRider handles GET /v1/trips/:id/live-rider
func (h *TripHandler) LiveRider(c *gin.Context) {
	view, err := h.tripService.LiveRider(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, view)
}

// TripRecordResponse is the HTTP representation of an archived trip.
type TripRecordResponse struct {
	TripID          string  `json:"trip_id"`
	RiderID         string  `json:"rider_id"`
	DriverID        string  `json:"driver_id,omitempty"`
	OriginName      string  `json:"origin_name"`
	DestinationName string  `json:"destination_name"`
	Status          string  `json:"status"`
	Price           float64 `json:"price"`
	DistanceMeters  int     `json:"distance_meters,omitempty"`
	DurationSeconds int     `json:"duration_seconds,omitempty"`
	RequestedAt     string  `json:"requested_at"`
	CancelReason    string  `json:"cancel_reason,omitempty"`
}

// History handles GET /v1/trips
func (h *TripHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	records, err := h.analyticsService.History(c.Request.Context(), middleware.CallerID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripRecordResponse, 0, len(records))
	for _, r := range records {
		response = append(response, tripRecordResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// Summary handles GET /v1/analytics/summary
func (h *TripHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, summary)
}

func tripRecordResponse(r *domain.TripRecord) TripRecordResponse {
	return TripRecordResponse{
		TripID:          r.TripID,
		RiderID:         r.RiderID,
		DriverID:        r.DriverID,
		OriginName:      r.OriginName,
		DestinationName: r.DestinationName,
		Status:          string(r.Status),
		Price:           r.Price,
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		RequestedAt:     r.RequestedAt.Format(time.RFC3339),
		CancelReason:    r.CancelReason,
	}
}

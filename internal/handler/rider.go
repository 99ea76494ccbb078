package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"greenride/internal/domain"
	"greenride/internal/middleware"
	"greenride/internal/service"
)

// RiderHandler handles HTTP requests for the rider side of the board.
type RiderHandler struct {
	boardService *service.BoardService
	liveService  *service.LiveLocationService
}

// NewRiderHandler creates a new RiderHandler.
func NewRiderHandler(boardService *service.BoardService, liveService *service.LiveLocationService) *RiderHandler {
	return &RiderHandler{
		boardService: boardService,
		liveService:  liveService,
	}
}

// PostOfferRequest is the HTTP request body for posting a ride offer.
type PostOfferRequest struct {
	Origin      PlaceRequest `json:"origin"`
	Destination PlaceRequest `json:"destination"`
}

// OfferResponse is the HTTP representation of a ride offer.
type OfferResponse struct {
	TripID          string       `json:"trip_id"`
	RiderID         string       `json:"rider_id"`
	Origin          PlaceRequest `json:"origin"`
	Destination     PlaceRequest `json:"destination"`
	Status          string       `json:"status"`
	MatchedDriverID string       `json:"matched_driver_id,omitempty"`
	DriverResponse  string       `json:"driver_response"`
	RiderResponse   string       `json:"rider_response"`
	Price           float64      `json:"price"`
	RequestedAt     string       `json:"requested_at"`
	MatchedAt       string       `json:"matched_at,omitempty"`
	ConfirmedAt     string       `json:"confirmed_at,omitempty"`
	CancelledAt     string       `json:"cancelled_at,omitempty"`
	CancelledBy     string       `json:"cancelled_by,omitempty"`
	CancelReason    string       `json:"cancel_reason,omitempty"`
	DistanceMeters  int          `json:"distance_meters,omitempty"`
	DurationSeconds int          `json:"duration_seconds,omitempty"`
	Polyline        string       `json:"polyline,omitempty"`
}

func offerResponse(o *domain.RideOffer) OfferResponse {
	resp := OfferResponse{
		TripID:          o.TripID,
		RiderID:         o.RiderID,
		Origin:          PlaceRequest{Name: o.Origin.Name, Lat: o.Origin.Coordinate.Lat, Lng: o.Origin.Coordinate.Lng},
		Destination:     PlaceRequest{Name: o.Destination.Name, Lat: o.Destination.Coordinate.Lat, Lng: o.Destination.Coordinate.Lng},
		Status:          string(o.Status),
		MatchedDriverID: o.MatchedDriverID,
		DriverResponse:  string(o.DriverResponse),
		RiderResponse:   string(o.RiderResponse),
		Price:           o.Price,
		RequestedAt:     o.RequestedAt.Format(time.RFC3339),
		CancelledBy:     o.CancelledBy,
		CancelReason:    o.CancelReason,
	}
	if !o.MatchedAt.IsZero() {
		resp.MatchedAt = o.MatchedAt.Format(time.RFC3339)
	}
	if !o.ConfirmedAt.IsZero() {
		resp.ConfirmedAt = o.ConfirmedAt.Format(time.RFC3339)
	}
	if !o.CancelledAt.IsZero() {
		resp.CancelledAt = o.CancelledAt.Format(time.RFC3339)
	}
	if o.SelectedRoute != nil {
		resp.DistanceMeters = o.SelectedRoute.DistanceMeters
		resp.DurationSeconds = o.SelectedRoute.DurationSeconds
		resp.Polyline = o.SelectedRoute.Polyline
	}
	return resp
}

// PostOffer handles POST /v1/offers
func (h *RiderHandler) PostOffer(c *gin.Context) {
	var req PostOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.boardService.Post(c.Request.Context(), service.PostRequest{
		RiderID:     middleware.CallerID(c),
		Origin:      req.Origin.toPlace(),
		Destination: req.Destination.toPlace(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, offerResponse(offer))
}

// ActiveOffer handles GET /v1/offers/active
func (h *RiderHandler) ActiveOffer(c *gin.Context) {
	offer, err := h.boardService.ActiveForRider(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// GetOffer handles GET /v1/offers/:id
func (h *RiderHandler) GetOffer(c *gin.Context) {
	offer, err := h.boardService.Get(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// WithdrawOffer handles DELETE /v1/offers/:id
func (h *RiderHandler) WithdrawOffer(c *gin.Context) {
	offer, err := h.boardService.Withdraw(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// RiderRespondRequest is the HTTP request body for the rider's answer.
type RiderRespondRequest struct {
	Response string `json:"response"`
}

// Respond handles POST /v1/offers/:id/response
func (h *RiderHandler) Respond(c *gin.Context) {
	var req RiderRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.boardService.RiderRespond(c.Request.Context(), c.Param("id"), middleware.CallerID(c), domain.Response(req.Response))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// UpdateLocation handles POST /v1/riders/location
func (h *RiderHandler) UpdateLocation(c *gin.Context) {
	var req CoordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if _, err := h.liveService.Update(c.Request.Context(), middleware.CallerID(c), domain.Coordinate{Lat: req.Lat, Lng: req.Lng}); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

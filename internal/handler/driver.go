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

// DriverHandler handles HTTP requests for driver presence and dispatch.
type DriverHandler struct {
	presenceService *service.PresenceService
	boardService    *service.BoardService
	liveService     *service.LiveLocationService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(presenceService *service.PresenceService, boardService *service.BoardService, liveService *service.LiveLocationService) *DriverHandler {
	return &DriverHandler{
		presenceService: presenceService,
		boardService:    boardService,
		liveService:     liveService,
	}
}

// PlaceRequest is a named point in an HTTP request body.
type PlaceRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (p PlaceRequest) toPlace() domain.Place {
	return domain.Place{Name: p.Name, Coordinate: domain.Coordinate{Lat: p.Lat, Lng: p.Lng}}
}

// CoordinateRequest is a bare lat/lng pair in an HTTP request body.
type CoordinateRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SetOnlineRequest is the HTTP request body for going online.
type SetOnlineRequest struct {
	Location *CoordinateRequest `json:"location"`
	Route    *struct {
		Origin       PlaceRequest        `json:"origin"`
		Destination  PlaceRequest        `json:"destination"`
		Waypoints    []CoordinateRequest `json:"waypoints"`
		PricePerRide float64             `json:"price_per_ride"`
	} `json:"route"`
}

// PresenceResponse is the HTTP response for driver presence data.
type PresenceResponse struct {
	DriverID          string             `json:"driver_id"`
	Online            bool               `json:"online"`
	Location          *CoordinateRequest `json:"location,omitempty"`
	LocationUpdatedAt string             `json:"location_updated_at,omitempty"`
	Route             *RouteResponse     `json:"route,omitempty"`
}

// RouteResponse is the HTTP representation of a declared route.
type RouteResponse struct {
	Origin       PlaceRequest        `json:"origin"`
	Destination  PlaceRequest        `json:"destination"`
	Waypoints    []CoordinateRequest `json:"waypoints,omitempty"`
	PricePerRide float64             `json:"price_per_ride"`
	SetAt        string              `json:"set_at"`
}

func presenceResponse(p *domain.DriverPresence) PresenceResponse {
	resp := PresenceResponse{
		DriverID: p.DriverID,
		Online:   p.Online,
	}
	if p.Location != nil {
		resp.Location = &CoordinateRequest{Lat: p.Location.Lat, Lng: p.Location.Lng}
		resp.LocationUpdatedAt = p.LocationUpdatedAt.Format(time.RFC3339)
	}
	if p.Route != nil {
		route := &RouteResponse{
			Origin:       PlaceRequest{Name: p.Route.Origin.Name, Lat: p.Route.Origin.Coordinate.Lat, Lng: p.Route.Origin.Coordinate.Lng},
			Destination:  PlaceRequest{Name: p.Route.Destination.Name, Lat: p.Route.Destination.Coordinate.Lat, Lng: p.Route.Destination.Coordinate.Lng},
			PricePerRide: p.Route.PricePerRide,
			SetAt:        p.Route.SetAt.Format(time.RFC3339),
		}
		for _, wp := range p.Route.Waypoints {
			route.Waypoints = append(route.Waypoints, CoordinateRequest{Lat: wp.Lat, Lng: wp.Lng})
		}
		resp.Route = route
	}
	return resp
}

// SetOnline handles POST /v1/drivers/online
func (h *DriverHandler) SetOnline(c *gin.Context) {
	var req SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	svcReq := service.SetOnlineRequest{DriverID: middleware.CallerID(c)}
	if req.Location != nil {
		svcReq.Location = &domain.Coordinate{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	if req.Route != nil {
		route := &service.DeclaredRouteInput{
			Origin:       req.Route.Origin.toPlace(),
			Destination:  req.Route.Destination.toPlace(),
			PricePerRide: req.Route.PricePerRide,
		}
		for _, wp := range req.Route.Waypoints {
			route.Waypoints = append(route.Waypoints, domain.Coordinate{Lat: wp.Lat, Lng: wp.Lng})
		}
		svcReq.Route = route
	}

	presence, err := h.presenceService.SetOnline(c.Request.Context(), svcReq)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, presenceResponse(presence))
}

// SetOffline handles POST /v1/drivers/offline
func (h *DriverHandler) SetOffline(c *gin.Context) {
	presence, err := h.presenceService.SetOffline(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, presenceResponse(presence))
}

// UpdateLocation handles POST /v1/drivers/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req CoordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driverID := middleware.CallerID(c)
	coord := domain.Coordinate{Lat: req.Lat, Lng: req.Lng}

	if err := h.presenceService.UpdateLocation(c.Request.Context(), driverID, coord); err != nil {
		respondError(c, err)
		return
	}
	// Feed the live slot too so an active trip counterpart sees it.
	if _, err := h.liveService.Update(c.Request.Context(), driverID, coord); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPresence handles GET /v1/drivers/:id
func (h *DriverHandler) GetPresence(c *gin.Context) {
	presence, err := h.presenceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, presenceResponse(presence))
}

// IncomingRequestResponse is one entry of the driver's dispatch view.
type IncomingRequestResponse struct {
	Offer                  OfferResponse `json:"offer"`
	OriginDeviationKm      float64       `json:"origin_deviation_km"`
	DestinationDeviationKm float64       `json:"destination_deviation_km"`
	Score                  float64       `json:"score"`
	MatchPercent           float64       `json:"match_percent"`
	PricePerRide           float64       `json:"price_per_ride"`
}

// IncomingRequests handles GET /v1/drivers/requests
func (h *DriverHandler) IncomingRequests(c *gin.Context) {
	requests, err := h.boardService.ListMatchingRoute(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]IncomingRequestResponse, 0, len(requests))
	for _, r := range requests {
		response = append(response, IncomingRequestResponse{
			Offer:                  offerResponse(r.Offer),
			OriginDeviationKm:      r.OriginDeviationKm,
			DestinationDeviationKm: r.DestinationDeviationKm,
			Score:                  r.Score,
			MatchPercent:           r.MatchPercent,
			PricePerRide:           r.PricePerRide,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// AvailableOfferResponse is one open offer near the driver.
type AvailableOfferResponse struct {
	Offer      OfferResponse `json:"offer"`
	DistanceKm float64       `json:"distance_km"`
}

// AvailableOffers handles GET /v1/drivers/offers
func (h *DriverHandler) AvailableOffers(c *gin.Context) {
	radiusKm := parseFloatQuery(c, "radius_km", 5)

	offers, err := h.boardService.ListForDriver(c.Request.Context(), middleware.CallerID(c), radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AvailableOfferResponse, 0, len(offers))
	for _, o := range offers {
		response = append(response, AvailableOfferResponse{
			Offer:      offerResponse(o.Offer),
			DistanceKm: o.DistanceKm,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// DriverRespondRequest is the HTTP request body for a driver's answer.
type DriverRespondRequest struct {
	TripID   string `json:"trip_id"`
	Response string `json:"response"`
}

// Respond handles POST /v1/drivers/respond
func (h *DriverHandler) Respond(c *gin.Context) {
	var req DriverRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.boardService.DriverRespond(c.Request.Context(), req.TripID, middleware.CallerID(c), domain.Response(req.Response))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// WithdrawRequest is the HTTP request body for backing out of a match.
type WithdrawRequest struct {
	TripID string `json:"trip_id"`
}

// Withdraw handles POST /v1/drivers/withdraw
func (h *DriverHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.boardService.DriverWithdraw(c.Request.Context(), req.TripID, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// NearbyDriverResponse is one driver near a pickup point.
type NearbyDriverResponse struct {
	DriverID     string  `json:"driver_id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	DistanceKm   float64 `json:"distance_km"`
	PricePerRide float64 `json:"price_per_ride"`
}

// Nearby handles GET /v1/drivers/nearby
func (h *DriverHandler) Nearby(c *gin.Context) {
	lat := parseFloatQuery(c, "lat", 0)
	lng := parseFloatQuery(c, "lng", 0)
	radiusKm := parseFloatQuery(c, "radius_km", 5)

	drivers, err := h.presenceService.NearbyDrivers(c.Request.Context(), domain.Coordinate{Lat: lat, Lng: lng}, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyDriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, NearbyDriverResponse{
			DriverID:     d.DriverID,
			Lat:          d.Location.Lat,
			Lng:          d.Location.Lng,
			DistanceKm:   d.DistanceKm,
			PricePerRide: d.PricePerRide,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

func parseFloatQuery(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"greenride/internal/repository"
	"greenride/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoMatchedDriver):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidSubjectID),
		errors.Is(err, service.ErrInvalidCoordinate),
		errors.Is(err, service.ErrInvalidRadius),
		errors.Is(err, service.ErrInvalidDeviation),
		errors.Is(err, service.ErrInvalidResponse),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrEmptyCancelReason):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrActiveOfferExists),
		errors.Is(err, service.ErrOfferNoLongerAvailable),
		errors.Is(err, service.ErrOfferNotMatched),
		errors.Is(err, service.ErrOfferTerminal),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotOfferOwner),
		errors.Is(err, service.ErrNotTripParticipant):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

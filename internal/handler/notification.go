package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"greenride/internal/domain"
	"greenride/internal/middleware"
	"greenride/internal/service"
)

// NotificationHandler handles HTTP requests for the notification inbox.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// NotificationResponse is the HTTP representation of an inbox entry.
type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	TripID    string `json:"trip_id,omitempty"`
	Message   string `json:"message"`
	Reason    string `json:"reason,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func notificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		TripID:    n.TripID,
		Message:   n.Message,
		Reason:    n.Reason,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notificationService.List(c.Request.Context(), middleware.CallerID(c), unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, notificationResponse(n))
	}

	respondJSON(c, http.StatusOK, response)
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), middleware.CallerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

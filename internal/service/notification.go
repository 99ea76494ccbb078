package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// NotificationService assigns identity and timestamps to outgoing
// notifications and serves each recipient's inbox.
type NotificationService struct {
	inbox  repository.NotificationInbox
	logger *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(inbox repository.NotificationInbox, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{inbox: inbox, logger: logger}
}

var _ Notifier = (*NotificationService)(nil)

// Notify stamps and stores a notification in the recipient's inbox.
func (s *NotificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if n.RecipientID == "" {
		return ErrInvalidRiderID
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()
	n.Read = false

	if err := s.inbox.Append(ctx, n); err != nil {
		return err
	}

	s.logger.Info("notification delivered",
		slog.String("notification_id", n.ID),
		slog.String("recipient_id", n.RecipientID),
		slog.String("kind", string(n.Kind)),
		slog.String("trip_id", n.TripID),
	)
	return nil
}

// List returns the caller's inbox, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string, unreadOnly bool) ([]*domain.Notification, error) {
	if recipientID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.inbox.ListByRecipient(ctx, recipientID, unreadOnly)
}

// MarkRead acknowledges one of the caller's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if recipientID == "" {
		return ErrInvalidRiderID
	}
	if notificationID == "" {
		return repository.ErrNotFound
	}
	return s.inbox.MarkRead(ctx, recipientID, notificationID)
}

package memory

import (
	"context"
	"sync"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// NotificationInbox is an in-memory repository.NotificationInbox.
type NotificationInbox struct {
	mu      sync.RWMutex
	inboxes map[string][]*domain.Notification
}

// NewNotificationInbox creates an empty inbox store.
func NewNotificationInbox() *NotificationInbox {
	return &NotificationInbox{
		inboxes: make(map[string][]*domain.Notification),
	}
}

// Append adds a notification to the recipient's inbox.
func (s *NotificationInbox) Append(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.inboxes[n.RecipientID] = append(s.inboxes[n.RecipientID], &cp)
	return nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (s *NotificationInbox) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.inboxes[recipientID]
	result := make([]*domain.Notification, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if unreadOnly && entries[i].Read {
			continue
		}
		cp := *entries[i]
		result = append(result, &cp)
	}
	return result, nil
}

// MarkRead acknowledges one notification owned by the recipient.
func (s *NotificationInbox) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.inboxes[recipientID] {
		if n.ID == notificationID {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

var _ repository.NotificationInbox = (*NotificationInbox)(nil)

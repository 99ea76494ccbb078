package repository

import (
	"context"

	"greenride/internal/domain"
)

// NotificationInbox stores per-recipient notification entries. Append
// only; the read flag is the single permitted mutation.
type NotificationInbox interface {
	// Append adds a notification to the recipient's inbox.
	Append(ctx context.Context, n *domain.Notification) error

	// ListByRecipient returns the recipient's notifications, newest
	// first. With unreadOnly set, read entries are skipped.
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*domain.Notification, error)

	// MarkRead acknowledges one notification. The recipient must own it.
	MarkRead(ctx context.Context, recipientID, notificationID string) error
}

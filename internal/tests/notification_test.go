package tests

import (
	"context"
	"errors"
	"testing"

	"greenride/internal/domain"
	"greenride/internal/repository"
	"greenride/internal/repository/memory"
	"greenride/internal/service"
)

func TestNotification_DeliverListAck(t *testing.T) {
	t.Parallel()

	notifications := service.NewNotificationService(memory.NewNotificationInbox(), nil)
	ctx := context.Background()

	for _, kind := range []domain.NotificationKind{domain.NotificationTripMatched, domain.NotificationTripConfirmed} {
		if err := notifications.Notify(ctx, &domain.Notification{
			RecipientID: "rider-1",
			Kind:        kind,
			TripID:      "trip-1",
			Message:     "hello",
		}); err != nil {
			t.Fatalf("notify %s: %v", kind, err)
		}
	}

	inbox, err := notifications.List(ctx, "rider-1", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("inbox size = %d, want 2", len(inbox))
	}
	// Newest first.
	if inbox[0].Kind != domain.NotificationTripConfirmed {
		t.Errorf("first entry = %s, want the latest TRIP_CONFIRMED", inbox[0].Kind)
	}
	for _, n := range inbox {
		if n.ID == "" || n.CreatedAt.IsZero() {
			t.Errorf("entry not stamped: %+v", n)
		}
		if n.Read {
			t.Errorf("fresh entry already read: %+v", n)
		}
	}

	if err := notifications.MarkRead(ctx, "rider-1", inbox[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	unread, err := notifications.List(ctx, "rider-1", true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 || unread[0].Kind != domain.NotificationTripMatched {
		t.Fatalf("unread = %+v, want the one unacked TRIP_MATCHED", unread)
	}
}

func TestNotification_MarkReadOwnerOnly(t *testing.T) {
	t.Parallel()

	notifications := service.NewNotificationService(memory.NewNotificationInbox(), nil)
	ctx := context.Background()

	n := &domain.Notification{RecipientID: "rider-1", Kind: domain.NotificationTripMatched, Message: "m"}
	if err := notifications.Notify(ctx, n); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := notifications.MarkRead(ctx, "rider-2", n.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign ack: expected ErrNotFound, got %v", err)
	}
}

func TestNotification_EmptyInbox(t *testing.T) {
	t.Parallel()

	notifications := service.NewNotificationService(memory.NewNotificationInbox(), nil)

	inbox, err := notifications.List(context.Background(), "rider-lonely", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inbox) != 0 {
		t.Fatalf("inbox = %+v, want empty", inbox)
	}
}

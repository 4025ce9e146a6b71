package events

import (
	"context"

	"github.com/aquaclean/carwash-api/internal/domain"
)

// NotificationSent is emitted after an admin notification is stored.
type NotificationSent struct {
	Notification domain.Notification
	// Recipients is the list of addressed users; empty for a broadcast.
	Recipients []domain.UserID
}

// Publisher fans stored notifications out to delivery channels (email, push, SMS workers).
type Publisher interface {
	PublishNotificationSent(ctx context.Context, e NotificationSent) error
}

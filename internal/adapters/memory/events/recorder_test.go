package events

import (
	"context"
	"testing"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/events"
)

func TestRecorder_KeepsPublishOrder(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	for _, id := range []domain.NotificationID{"n1", "n2"} {
		if err := r.PublishNotificationSent(context.Background(), events.NotificationSent{
			Notification: domain.Notification{ID: id},
		}); err != nil {
			t.Fatalf("PublishNotificationSent() err=%v", err)
		}
	}
	sent := r.Sent()
	if len(sent) != 2 || sent[0].Notification.ID != "n1" || sent[1].Notification.ID != "n2" {
		t.Fatalf("Sent()=%+v", sent)
	}
}

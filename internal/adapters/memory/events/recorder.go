package events

import (
	"context"
	"sync"

	"github.com/aquaclean/carwash-api/internal/ports/out/events"
)

// Recorder is an in-process events.Publisher that keeps every published event.
// It backs EVENTS_BACKEND=memory and tests.
type Recorder struct {
	mu   sync.Mutex
	sent []events.NotificationSent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PublishNotificationSent(ctx context.Context, e events.NotificationSent) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, e)
	return nil
}

// Sent returns a copy of the published events in publish order.
func (r *Recorder) Sent() []events.NotificationSent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.NotificationSent(nil), r.sent...)
}

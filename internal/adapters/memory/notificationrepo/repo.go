package notificationrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
)

// Repo is an in-memory implementation of notificationrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID  map[domain.NotificationID]domain.Notification
	seq   map[domain.NotificationID]int
	order int
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.NotificationID]domain.Notification),
		seq:  make(map[domain.NotificationID]int),
	}
}

func (r *Repo) Create(ctx context.Context, n domain.Notification) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[n.ID]; ok {
		return notificationrepo.ErrAlreadyExists
	}
	r.order++
	r.byID[n.ID] = cloneNotification(n)
	r.seq[n.ID] = r.order
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.NotificationID) (domain.Notification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byID[id]
	if !ok {
		return domain.Notification{}, notificationrepo.ErrNotFound
	}
	return cloneNotification(n), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Notification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Notification, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, cloneNotification(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *Repo) MarkRead(ctx context.Context, id domain.NotificationID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return notificationrepo.ErrNotFound
	}
	n.Read = true
	r.byID[id] = n
	return nil
}

func cloneNotification(n domain.Notification) domain.Notification {
	out := n
	if n.UserID != nil {
		v := *n.UserID
		out.UserID = &v
	}
	return out
}

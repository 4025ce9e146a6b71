package userrepo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID      map[domain.UserID]userrepo.Record
	idByEmail map[string]domain.UserID
	order     []domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.UserID]userrepo.Record),
		idByEmail: make(map[string]domain.UserID),
	}
}

func (r *Repo) Create(ctx context.Context, rec userrepo.Record) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.User.ID]; ok {
		return userrepo.ErrAlreadyExists
	}
	key := emailKey(rec.User.Email)
	if _, ok := r.idByEmail[key]; ok {
		return userrepo.ErrEmailTaken
	}

	r.byID[rec.User.ID] = cloneRecord(rec)
	r.idByEmail[key] = rec.User.ID
	r.order = append(r.order, rec.User.ID)
	return nil
}

func (r *Repo) Update(ctx context.Context, u domain.User, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return userrepo.ErrNotFound
	}
	oldKey := emailKey(existing.User.Email)
	newKey := emailKey(u.Email)
	if oldKey != newKey {
		if other, taken := r.idByEmail[newKey]; taken && other != u.ID {
			return userrepo.ErrEmailTaken
		}
		delete(r.idByEmail, oldKey)
		r.idByEmail[newKey] = u.ID
	}

	existing.User = u.Clone()
	existing.UpdatedAt = updatedAt
	r.byID[u.ID] = existing
	return nil
}

func (r *Repo) SetPasswordHash(ctx context.Context, id domain.UserID, hash []byte, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[id]
	if !ok {
		return userrepo.ErrNotFound
	}
	existing.PasswordHash = append([]byte(nil), hash...)
	existing.UpdatedAt = updatedAt
	r.byID[id] = existing
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return userrepo.Record{}, userrepo.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[emailKey(email)]
	if !ok {
		return userrepo.Record{}, userrepo.ErrNotFound
	}
	rec, ok := r.byID[id]
	if !ok {
		return userrepo.Record{}, userrepo.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].User.Clone())
	}
	return out, nil
}

func cloneRecord(rec userrepo.Record) userrepo.Record {
	out := rec
	out.User = rec.User.Clone()
	if rec.PasswordHash != nil {
		out.PasswordHash = append([]byte(nil), rec.PasswordHash...)
	}
	return out
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

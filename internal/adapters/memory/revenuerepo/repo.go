package revenuerepo

import (
	"context"
	"sync"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
)

// Repo is an in-memory implementation of revenuerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	series []domain.Revenue
}

func NewRepo() *Repo {
	return &Repo{}
}

func (r *Repo) Append(ctx context.Context, rev domain.Revenue) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.series); n > 0 && rev.Month <= r.series[n-1].Month {
		return revenuerepo.ErrOutOfOrder
	}
	r.series = append(r.series, rev)
	return nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Revenue, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Revenue(nil), r.series...), nil
}

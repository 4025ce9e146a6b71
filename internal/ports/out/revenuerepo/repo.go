package revenuerepo

import (
	"context"
	"errors"

	"github.com/aquaclean/carwash-api/internal/domain"
)

var (
	// ErrOutOfOrder indicates an append for a month that is not after the latest stored month.
	ErrOutOfOrder = errors.New("revenue month out of order")
)

// Repository is an append-only monthly revenue series.
type Repository interface {
	Append(ctx context.Context, r domain.Revenue) error
	// List returns the series ordered by month ascending.
	List(ctx context.Context) ([]domain.Revenue, error)
}

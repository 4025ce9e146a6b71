package revenuerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/aquaclean/carwash-api/internal/adapters/postgres"
	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
)

// Repo is a Postgres implementation of revenuerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Append inserts the month only when it sorts after every stored month.
func (r *Repo) Append(ctx context.Context, rev domain.Revenue) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO revenue (month, basic, premium, luxury, total)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM revenue WHERE month >= $1)
	`, rev.Month, rev.Basic, rev.Premium, rev.Luxury, rev.Total)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return revenuerepo.ErrOutOfOrder
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return revenuerepo.ErrOutOfOrder
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Revenue, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `SELECT month, basic, premium, luxury, total FROM revenue ORDER BY month ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Revenue{}
	for rows.Next() {
		var rev domain.Revenue
		if err := rows.Scan(&rev.Month, &rev.Basic, &rev.Premium, &rev.Luxury, &rev.Total); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

package notificationrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/aquaclean/carwash-api/internal/adapters/postgres"
	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
)

// Repo is a Postgres implementation of notificationrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, n domain.Notification) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	var userID *string
	if n.UserID != nil {
		v := string(*n.UserID)
		userID = &v
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, date, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		string(n.ID),
		userID,
		n.Title,
		n.Message,
		string(n.Type),
		n.Date,
		n.Read,
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return notificationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

const selectColumns = `SELECT id, user_id, title, message, type, date, read FROM notifications`

func (r *Repo) GetByID(ctx context.Context, id domain.NotificationID) (domain.Notification, error) {
	if r.pool == nil {
		return domain.Notification{}, errors.New("nil postgres pool")
	}
	n, err := scanNotification(r.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, notificationrepo.ErrNotFound
		}
		return domain.Notification{}, err
	}
	return n, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Notification, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY date DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) MarkRead(ctx context.Context, id domain.NotificationID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return notificationrepo.ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (domain.Notification, error) {
	var (
		n       domain.Notification
		id, typ string
		userID  *string
	)
	if err := row.Scan(&id, &userID, &n.Title, &n.Message, &typ, &n.Date, &n.Read); err != nil {
		return domain.Notification{}, err
	}
	n.ID = domain.NotificationID(id)
	n.Type = domain.NotificationType(typ)
	n.Date = n.Date.UTC()
	if userID != nil {
		uid := domain.UserID(*userID)
		n.UserID = &uid
	}
	return n, nil
}

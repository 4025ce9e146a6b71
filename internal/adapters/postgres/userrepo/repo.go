package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/aquaclean/carwash-api/internal/adapters/postgres"
	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

// Repo is a Postgres implementation of userrepo.Repository.
// Child collections live in their own tables and are rewritten on every Update.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const userColumns = `
	id, name, email, phone, role, join_date,
	sub_tier, sub_duration, sub_start, sub_end, sub_status,
	total_spent, password_hash, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, rec userrepo.Record) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	u := rec.User
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`,
			string(u.ID),
			u.Name,
			u.Email,
			u.Phone,
			string(u.Role),
			u.JoinDate,
			string(u.Subscription.Tier),
			string(u.Subscription.Duration),
			u.Subscription.StartDate,
			u.Subscription.EndDate,
			string(u.Subscription.Status),
			u.TotalSpent,
			nullableHash(rec.PasswordHash),
			rec.CreatedAt.UTC(),
			rec.UpdatedAt.UTC(),
		)
		if err != nil {
			return translateUniqueViolation(err)
		}
		return insertChildren(ctx, tx, u)
	})
}

func (r *Repo) Update(ctx context.Context, u domain.User, updatedAt time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			UPDATE users
			SET name = $2,
			    email = $3,
			    phone = $4,
			    role = $5,
			    join_date = $6,
			    sub_tier = $7,
			    sub_duration = $8,
			    sub_start = $9,
			    sub_end = $10,
			    sub_status = $11,
			    total_spent = $12,
			    updated_at = $13
			WHERE id = $1
		`,
			string(u.ID),
			u.Name,
			u.Email,
			u.Phone,
			string(u.Role),
			u.JoinDate,
			string(u.Subscription.Tier),
			string(u.Subscription.Duration),
			u.Subscription.StartDate,
			u.Subscription.EndDate,
			string(u.Subscription.Status),
			u.TotalSpent,
			updatedAt.UTC(),
		)
		if err != nil {
			return translateUniqueViolation(err)
		}
		if ct.RowsAffected() == 0 {
			return userrepo.ErrNotFound
		}

		for _, table := range []string{"cars", "appointments", "feedback"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, string(u.ID)); err != nil {
				return err
			}
		}
		return insertChildren(ctx, tx, u)
	})
}

func (r *Repo) SetPasswordHash(ctx context.Context, id domain.UserID, hash []byte, updatedAt time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, string(id), nullableHash(hash), updatedAt.UTC())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.Record, error) {
	return r.getOne(ctx, `WHERE id = $1`, string(id))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.Record, error) {
	return r.getOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *Repo) getOne(ctx context.Context, where string, arg string) (userrepo.Record, error) {
	if r.pool == nil {
		return userrepo.Record{}, errors.New("nil postgres pool")
	}
	var rec userrepo.Record
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
		var err error
		rec, err = scanRecord(row)
		if err != nil {
			return err
		}
		children, err := loadChildren(ctx, tx, []string{string(rec.User.ID)})
		if err != nil {
			return err
		}
		children.attach(&rec.User)
		return nil
	})
	if err != nil {
		return userrepo.Record{}, err
	}
	return rec, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	var out []domain.User
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			out = append(out, rec.User)
			ids = append(ids, string(rec.User.ID))
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		children, err := loadChildren(ctx, tx, ids)
		if err != nil {
			return err
		}
		for i := range out {
			children.attach(&out[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func translateUniqueViolation(err error) error {
	if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
		switch pe.ConstraintName {
		case "users_pkey":
			return userrepo.ErrAlreadyExists
		case "users_email_lower_unique":
			return userrepo.ErrEmailTaken
		}
	}
	return err
}

func nullableHash(h []byte) any {
	if len(h) == 0 {
		return nil
	}
	return h
}

func scanRecord(row pgx.Row) (userrepo.Record, error) {
	var (
		rec                        userrepo.Record
		id, role                   string
		tier, duration, status     string
		joinDate, subStart, subEnd time.Time
		hash                       []byte
	)
	err := row.Scan(
		&id,
		&rec.User.Name,
		&rec.User.Email,
		&rec.User.Phone,
		&role,
		&joinDate,
		&tier,
		&duration,
		&subStart,
		&subEnd,
		&status,
		&rec.User.TotalSpent,
		&hash,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.Record{}, userrepo.ErrNotFound
		}
		return userrepo.Record{}, err
	}
	rec.User.ID = domain.UserID(id)
	rec.User.Role = domain.Role(role)
	rec.User.JoinDate = joinDate.UTC()
	rec.User.Subscription = domain.Subscription{
		Tier:      domain.Tier(tier),
		Duration:  domain.Duration(duration),
		StartDate: subStart.UTC(),
		EndDate:   subEnd.UTC(),
		Status:    domain.SubscriptionStatus(status),
	}
	rec.PasswordHash = hash
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func insertChildren(ctx context.Context, tx pgx.Tx, u domain.User) error {
	for i, c := range u.Cars {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cars (user_id, id, position, make, model, year, color, license_plate, added_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, string(u.ID), string(c.ID), i, c.Make, c.Model, c.Year, c.Color, c.LicensePlate, c.AddedDate); err != nil {
			return fmt.Errorf("insert car %q: %w", c.ID, err)
		}
	}
	for i, a := range u.Appointments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO appointments (user_id, id, position, car_id, date, time_slot, service, status, wash_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, string(u.ID), string(a.ID), i, string(a.CarID), a.Date, a.Time, string(a.Service), string(a.Status), a.WashType); err != nil {
			return fmt.Errorf("insert appointment %q: %w", a.ID, err)
		}
	}
	for i, f := range u.Feedback {
		if _, err := tx.Exec(ctx, `
			INSERT INTO feedback (user_id, id, position, rating, comment, date, service_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, string(u.ID), string(f.ID), i, f.Rating, f.Comment, f.Date, f.ServiceType); err != nil {
			return fmt.Errorf("insert feedback %q: %w", f.ID, err)
		}
	}
	return nil
}

type childSet struct {
	cars         map[domain.UserID][]domain.Car
	appointments map[domain.UserID][]domain.Appointment
	feedback     map[domain.UserID][]domain.Feedback
}

func (c childSet) attach(u *domain.User) {
	u.Cars = append([]domain.Car{}, c.cars[u.ID]...)
	u.Appointments = append([]domain.Appointment{}, c.appointments[u.ID]...)
	u.Feedback = append([]domain.Feedback{}, c.feedback[u.ID]...)
}

func loadChildren(ctx context.Context, tx pgx.Tx, userIDs []string) (childSet, error) {
	out := childSet{
		cars:         map[domain.UserID][]domain.Car{},
		appointments: map[domain.UserID][]domain.Appointment{},
		feedback:     map[domain.UserID][]domain.Feedback{},
	}
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT user_id, id, make, model, year, color, license_plate, added_date
		FROM cars WHERE user_id = ANY($1) ORDER BY user_id, position
	`, userIDs)
	if err != nil {
		return childSet{}, err
	}
	for rows.Next() {
		var (
			uid, id string
			c       domain.Car
		)
		if err := rows.Scan(&uid, &id, &c.Make, &c.Model, &c.Year, &c.Color, &c.LicensePlate, &c.AddedDate); err != nil {
			rows.Close()
			return childSet{}, err
		}
		c.ID = domain.CarID(id)
		c.UserID = domain.UserID(uid)
		c.AddedDate = c.AddedDate.UTC()
		out.cars[c.UserID] = append(out.cars[c.UserID], c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return childSet{}, err
	}

	rows, err = tx.Query(ctx, `
		SELECT user_id, id, car_id, date, time_slot, service, status, wash_type
		FROM appointments WHERE user_id = ANY($1) ORDER BY user_id, position
	`, userIDs)
	if err != nil {
		return childSet{}, err
	}
	for rows.Next() {
		var (
			uid, id, carID, service, status string
			a                               domain.Appointment
		)
		if err := rows.Scan(&uid, &id, &carID, &a.Date, &a.Time, &service, &status, &a.WashType); err != nil {
			rows.Close()
			return childSet{}, err
		}
		a.ID = domain.AppointmentID(id)
		a.UserID = domain.UserID(uid)
		a.CarID = domain.CarID(carID)
		a.Date = a.Date.UTC()
		a.Service = domain.Tier(service)
		a.Status = domain.AppointmentStatus(status)
		out.appointments[a.UserID] = append(out.appointments[a.UserID], a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return childSet{}, err
	}

	rows, err = tx.Query(ctx, `
		SELECT user_id, id, rating, comment, date, service_type
		FROM feedback WHERE user_id = ANY($1) ORDER BY user_id, position
	`, userIDs)
	if err != nil {
		return childSet{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			uid, id string
			f       domain.Feedback
		)
		if err := rows.Scan(&uid, &id, &f.Rating, &f.Comment, &f.Date, &f.ServiceType); err != nil {
			return childSet{}, err
		}
		f.ID = domain.FeedbackID(id)
		f.UserID = domain.UserID(uid)
		f.Date = f.Date.UTC()
		out.feedback[f.UserID] = append(out.feedback[f.UserID], f)
	}
	return out, rows.Err()
}

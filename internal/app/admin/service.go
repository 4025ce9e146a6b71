package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/domain"
	clockport "github.com/aquaclean/carwash-api/internal/ports/out/clock"
	"github.com/aquaclean/carwash-api/internal/ports/out/events"
	"github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
	"github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

// Accounts is the slice of the auth service the admin area depends on.
type Accounts interface {
	RequireAdmin(ctx context.Context, token string) (auth.Session, error)
	AdminUpdateUser(ctx context.Context, token string, updated domain.User) (domain.User, error)
}

type Deps struct {
	Accounts      Accounts
	Users         userrepo.Repository
	Notifications notificationrepo.Repository
	Revenue       revenuerepo.Repository
	Publisher     events.Publisher
	Clock         clockport.Clock
	Logger        *zap.Logger
}

type Service struct {
	accounts      Accounts
	users         userrepo.Repository
	notifications notificationrepo.Repository
	revenue       revenuerepo.Repository
	publisher     events.Publisher
	clk           clockport.Clock
	log           *zap.Logger

	settings Settings

	newNotificationID func() domain.NotificationID
}

func NewService(d Deps, settings Settings) *Service {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		accounts:      d.Accounts,
		users:         d.Users,
		notifications: d.Notifications,
		revenue:       d.Revenue,
		publisher:     d.Publisher,
		clk:           d.Clock,
		log:           log,
		settings:      settings,
		newNotificationID: func() domain.NotificationID {
			return domain.NotificationID(uuid.NewString())
		},
	}
}

func (s *Service) listUsers(ctx context.Context, token string) ([]domain.User, error) {
	if _, err := s.accounts.RequireAdmin(ctx, token); err != nil {
		return nil, err
	}
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return us, nil
}

func (s *Service) ListUsers(ctx context.Context, token string, f UserFilter) ([]domain.User, error) {
	us, err := s.listUsers(ctx, token)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(us))
	for _, u := range us {
		if !domain.MatchesSearch(f.Search, u.Name, u.Email) {
			continue
		}
		if !domain.MatchesExact(f.Status, string(u.Subscription.Status)) || !domain.MatchesExact(f.Tier, string(u.Subscription.Tier)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, token string, id domain.UserID) (domain.User, error) {
	if _, err := s.accounts.RequireAdmin(ctx, token); err != nil {
		return domain.User{}, err
	}
	rec, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, apperr.NotFound("User not found.")
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return rec.User, nil
}

func (s *Service) ListCars(ctx context.Context, token string, f CarFilter) ([]CarRow, error) {
	us, err := s.listUsers(ctx, token)
	if err != nil {
		return nil, err
	}
	var out []CarRow
	for _, u := range us {
		for _, c := range u.Cars {
			if !domain.MatchesSearch(f.Search, c.Make, c.Model, c.LicensePlate, u.Name) {
				continue
			}
			if !domain.MatchesExact(f.Make, c.Make) {
				continue
			}
			out = append(out, CarRow{Car: c, OwnerName: u.Name, OwnerEmail: u.Email, OwnerTier: u.Subscription.Tier})
		}
	}
	return out, nil
}

// CarMakes lists distinct makes in first-seen order with how many cars carry each.
func (s *Service) CarMakes(ctx context.Context, token string) ([]MakeCount, error) {
	us, err := s.listUsers(ctx, token)
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	var out []MakeCount
	for _, u := range us {
		for _, c := range u.Cars {
			if i, ok := idx[c.Make]; ok {
				out[i].Count++
				continue
			}
			idx[c.Make] = len(out)
			out = append(out, MakeCount{Make: c.Make, Count: 1})
		}
	}
	return out, nil
}

func (s *Service) ListAppointments(ctx context.Context, token string, f AppointmentFilter) (AppointmentList, error) {
	us, err := s.listUsers(ctx, token)
	if err != nil {
		return AppointmentList{}, err
	}
	var out AppointmentList
	for _, u := range us {
		for _, a := range u.Appointments {
			out.Counts.Total++
			switch a.Status {
			case domain.AppointmentScheduled:
				out.Counts.Scheduled++
			case domain.AppointmentCompleted:
				out.Counts.Completed++
			case domain.AppointmentCancelled:
				out.Counts.Cancelled++
			}

			row := AppointmentRow{Appointment: a, OwnerName: u.Name, OwnerEmail: u.Email}
			fields := []string{u.Name}
			if c, ok := u.FindCar(a.CarID); ok {
				row.Car = &c
				fields = append(fields, c.Make, c.Model)
			}
			if !domain.MatchesSearch(f.Search, fields...) {
				continue
			}
			if !domain.MatchesExact(f.Status, string(a.Status)) || !domain.MatchesExact(f.Service, string(a.Service)) {
				continue
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func (s *Service) SetAppointmentStatus(ctx context.Context, token string, userID domain.UserID, id domain.AppointmentID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if !status.Valid() {
		return domain.Appointment{}, apperr.Validation("invalid status", map[string]any{"status": "must be scheduled, completed or cancelled"})
	}
	u, err := s.GetUser(ctx, token, userID)
	if err != nil {
		return domain.Appointment{}, err
	}
	i := u.FindAppointment(id)
	if i < 0 {
		return domain.Appointment{}, apperr.NotFound("Appointment not found.")
	}
	current := u.Appointments[i].Status
	if !current.CanTransitionTo(status) {
		return domain.Appointment{}, apperr.Conflict(apperr.CodeInvalidStatusTransition,
			fmt.Sprintf("Cannot move a %s appointment to %s.", current, status))
	}
	updated := u.Clone()
	updated.Appointments[i].Status = status
	if _, err := s.accounts.AdminUpdateUser(ctx, token, updated); err != nil {
		return domain.Appointment{}, err
	}
	s.log.Info("appointment status changed",
		zap.String("user_id", string(userID)),
		zap.String("appointment_id", string(id)),
		zap.String("status", string(status)),
	)
	return updated.Appointments[i], nil
}

func (s *Service) Notifications(ctx context.Context, token string) (NotificationList, error) {
	us, err := s.listUsers(ctx, token)
	if err != nil {
		return NotificationList{}, err
	}
	ns, err := s.notifications.List(ctx)
	if err != nil {
		return NotificationList{}, fmt.Errorf("list notifications: %w", err)
	}
	return NotificationList{Notifications: ns, Stats: notificationStats(ns, us)}, nil
}

func notificationStats(ns []domain.Notification, us []domain.User) NotificationStats {
	st := NotificationStats{Total: len(ns)}
	for _, n := range ns {
		if !n.Read {
			st.Unread++
		}
		switch n.Type {
		case domain.NotificationReminder:
			st.Reminders++
		case domain.NotificationPromotion:
			st.Promotions++
		}
	}
	for _, u := range us {
		if u.Subscription.Status == domain.SubscriptionActive {
			st.ActiveUsers++
		}
	}
	return st
}

// SendNotification stores the notification and then publishes it for delivery.
// A publish failure is logged; the stored notification stands.
func (s *Service) SendNotification(ctx context.Context, token string, in SendNotificationInput) (domain.Notification, error) {
	if _, err := s.accounts.RequireAdmin(ctx, token); err != nil {
		return domain.Notification{}, err
	}

	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if in.Recipients == "" {
		in.Recipients = RecipientsAll
	}
	if in.Type == "" {
		in.Type = domain.NotificationSystem
	}
	details := map[string]any{}
	if title == "" {
		details["title"] = "must be non-empty"
	}
	if message == "" {
		details["message"] = "must be non-empty"
	}
	if !in.Type.Valid() {
		details["type"] = "must be reminder, promotion or system"
	}
	switch in.Recipients {
	case RecipientsAll:
	case RecipientsSpecific:
		if in.UserID == "" {
			details["userId"] = "required when recipients is specific"
		}
	default:
		details["recipients"] = "must be all or specific"
	}
	if len(details) > 0 {
		return domain.Notification{}, apperr.Validation("invalid notification", details)
	}

	n := domain.Notification{
		ID:      s.newNotificationID(),
		Title:   title,
		Message: message,
		Type:    in.Type,
		Date:    domain.DateOf(s.clk.Now()),
	}
	var recipients []domain.UserID
	if in.Recipients == RecipientsSpecific {
		if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
			if errors.Is(err, userrepo.ErrNotFound) {
				return domain.Notification{}, apperr.Validation("invalid notification", map[string]any{"userId": "unknown user"})
			}
			return domain.Notification{}, fmt.Errorf("get recipient: %w", err)
		}
		uid := in.UserID
		n.UserID = &uid
		recipients = []domain.UserID{uid}
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return domain.Notification{}, fmt.Errorf("store notification: %w", err)
	}
	if err := s.publisher.PublishNotificationSent(ctx, events.NotificationSent{Notification: n, Recipients: recipients}); err != nil {
		s.log.Warn("publish notification failed", zap.String("notification_id", string(n.ID)), zap.Error(err))
	}
	return n, nil
}

func (s *Service) Settings(ctx context.Context, token string) (Settings, error) {
	if _, err := s.accounts.RequireAdmin(ctx, token); err != nil {
		return Settings{}, err
	}
	out := s.settings
	out.Plans = domain.Plans()
	return out, nil
}

func (s *Service) Revenue(ctx context.Context, token string) ([]domain.Revenue, error) {
	if _, err := s.accounts.RequireAdmin(ctx, token); err != nil {
		return nil, err
	}
	rev, err := s.revenue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list revenue: %w", err)
	}
	return rev, nil
}

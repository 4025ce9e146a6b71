package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/domain"
	clockport "github.com/aquaclean/carwash-api/internal/ports/out/clock"
	"github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
)

// Accounts is the slice of the auth service the customer area writes through.
type Accounts interface {
	Authenticate(ctx context.Context, token string) (auth.Session, error)
	UpdateUser(ctx context.Context, token string, updated domain.User) (domain.User, error)
	ChangePassword(ctx context.Context, token, current, next, confirm string) error
}

type Service struct {
	accounts      Accounts
	notifications notificationrepo.Repository
	clk           clockport.Clock

	newID func() string
}

func NewService(accounts Accounts, notifications notificationrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		accounts:      accounts,
		notifications: notifications,
		clk:           clk,
		newID:         uuid.NewString,
	}
}

func (s *Service) me(ctx context.Context, token string) (domain.User, error) {
	sess, err := s.accounts.Authenticate(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	return sess.User, nil
}

func (s *Service) today() time.Time {
	return domain.DateOf(s.clk.Now())
}

func (s *Service) Me(ctx context.Context, token string) (domain.User, error) {
	return s.me(ctx, token)
}

func (s *Service) Dashboard(ctx context.Context, token string) (Dashboard, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return Dashboard{}, err
	}
	plan, _ := domain.PlanFor(u.Subscription.Tier)
	out := Dashboard{
		User:          u,
		Plan:          plan,
		CarCount:      len(u.Cars),
		FeedbackCount: len(u.Feedback),
	}
	if next, ok := u.NextScheduled(); ok {
		out.NextWash = &next
	}
	for _, a := range u.Appointments {
		if a.Status == domain.AppointmentScheduled {
			out.UpcomingCount++
		}
	}
	out.DaysRemaining = int(u.Subscription.EndDate.Sub(s.today()).Hours() / 24)
	out.RenewalDue = out.DaysRemaining > 0 && out.DaysRemaining <= 7
	return out, nil
}

func (s *Service) ListCars(ctx context.Context, token string) ([]domain.Car, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return nil, err
	}
	return u.Cars, nil
}

func (s *Service) validateCar(in CarInput) (CarInput, error) {
	out := CarInput{
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Color:        strings.TrimSpace(in.Color),
		LicensePlate: strings.ToUpper(strings.TrimSpace(in.LicensePlate)),
	}
	details := map[string]any{}
	if out.Make == "" {
		details["make"] = "must be non-empty"
	}
	if out.Model == "" {
		details["model"] = "must be non-empty"
	}
	if out.LicensePlate == "" {
		details["licensePlate"] = "must be non-empty"
	}
	maxYear := s.clk.Now().UTC().Year() + 1
	if out.Year < 1900 || out.Year > maxYear {
		details["year"] = fmt.Sprintf("must be between 1900 and %d", maxYear)
	}
	if len(details) > 0 {
		return CarInput{}, apperr.Validation("invalid car", details)
	}
	return out, nil
}

func (s *Service) AddCar(ctx context.Context, token string, in CarInput) (domain.Car, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.Car{}, err
	}
	in, err = s.validateCar(in)
	if err != nil {
		return domain.Car{}, err
	}
	car := domain.Car{
		ID:           domain.CarID(s.newID()),
		UserID:       u.ID,
		Make:         in.Make,
		Model:        in.Model,
		Year:         in.Year,
		Color:        in.Color,
		LicensePlate: in.LicensePlate,
		AddedDate:    s.today(),
	}
	updated := u.Clone()
	updated.Cars = append(updated.Cars, car)
	if _, err := s.accounts.UpdateUser(ctx, token, updated); err != nil {
		return domain.Car{}, err
	}
	return car, nil
}

func (s *Service) UpdateCar(ctx context.Context, token string, id domain.CarID, in CarInput) (domain.Car, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.Car{}, err
	}
	in, err = s.validateCar(in)
	if err != nil {
		return domain.Car{}, err
	}
	updated := u.Clone()
	for i := range updated.Cars {
		if updated.Cars[i].ID != id {
			continue
		}
		c := &updated.Cars[i]
		c.Make, c.Model, c.Year, c.Color, c.LicensePlate = in.Make, in.Model, in.Year, in.Color, in.LicensePlate
		car := *c
		if _, err := s.accounts.UpdateUser(ctx, token, updated); err != nil {
			return domain.Car{}, err
		}
		return car, nil
	}
	return domain.Car{}, apperr.NotFound("Car not found.")
}

func (s *Service) RemoveCar(ctx context.Context, token string, id domain.CarID) error {
	u, err := s.me(ctx, token)
	if err != nil {
		return err
	}
	if _, ok := u.FindCar(id); !ok {
		return apperr.NotFound("Car not found.")
	}
	for _, a := range u.Appointments {
		if a.CarID == id && a.Status == domain.AppointmentScheduled {
			return apperr.Conflict(apperr.CodeCarHasScheduledAppointments, "Cancel the car's scheduled appointments before removing it.")
		}
	}
	updated := u.Clone()
	updated.Cars = updated.Cars[:0]
	for _, c := range u.Cars {
		if c.ID != id {
			updated.Cars = append(updated.Cars, c)
		}
	}
	_, err = s.accounts.UpdateUser(ctx, token, updated)
	return err
}

func (s *Service) ListAppointments(ctx context.Context, token string) (Appointments, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return Appointments{}, err
	}
	out := Appointments{Upcoming: []domain.Appointment{}, Past: []domain.Appointment{}}
	for _, a := range u.Appointments {
		if a.Status == domain.AppointmentScheduled {
			out.Upcoming = append(out.Upcoming, a)
		} else {
			out.Past = append(out.Past, a)
		}
	}
	return out, nil
}

func (s *Service) BookAppointment(ctx context.Context, token string, in BookingInput) (domain.Appointment, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.Appointment{}, err
	}

	details := map[string]any{}
	if _, ok := u.FindCar(in.CarID); !ok {
		details["carId"] = "must be one of your cars"
	}
	date := domain.DateOf(in.Date)
	if in.Date.IsZero() {
		details["date"] = "must be set"
	} else if date.Before(s.today()) {
		details["date"] = "must be today or later"
	}
	if !domain.IsTimeSlot(in.Time) {
		details["time"] = "must be one of the bookable time slots"
	}
	if !in.Service.Valid() {
		details["service"] = "must be basic, premium or luxury"
	} else if !domain.IsWashTypeFor(in.Service, in.WashType) {
		details["washType"] = fmt.Sprintf("must be one of %s", strings.Join(domain.WashTypesFor(in.Service), ", "))
	}
	if len(details) > 0 {
		return domain.Appointment{}, apperr.Validation("invalid appointment", details)
	}

	appt := domain.Appointment{
		ID:       domain.AppointmentID(s.newID()),
		UserID:   u.ID,
		CarID:    in.CarID,
		Date:     date,
		Time:     in.Time,
		Service:  in.Service,
		Status:   domain.AppointmentScheduled,
		WashType: in.WashType,
	}
	updated := u.Clone()
	updated.Appointments = append(updated.Appointments, appt)
	if _, err := s.accounts.UpdateUser(ctx, token, updated); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (s *Service) CancelAppointment(ctx context.Context, token string, id domain.AppointmentID) (domain.Appointment, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.Appointment{}, err
	}
	i := u.FindAppointment(id)
	if i < 0 {
		return domain.Appointment{}, apperr.NotFound("Appointment not found.")
	}
	if !u.Appointments[i].Status.CanTransitionTo(domain.AppointmentCancelled) {
		return domain.Appointment{}, apperr.Conflict(apperr.CodeInvalidStatusTransition,
			fmt.Sprintf("A %s appointment cannot be cancelled.", u.Appointments[i].Status))
	}
	updated := u.Clone()
	updated.Appointments[i].Status = domain.AppointmentCancelled
	if _, err := s.accounts.UpdateUser(ctx, token, updated); err != nil {
		return domain.Appointment{}, err
	}
	return updated.Appointments[i], nil
}

func (s *Service) ListFeedback(ctx context.Context, token string) ([]domain.Feedback, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return nil, err
	}
	return u.Feedback, nil
}

func (s *Service) SubmitFeedback(ctx context.Context, token string, in FeedbackInput) (domain.Feedback, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.Feedback{}, err
	}
	comment := strings.TrimSpace(in.Comment)
	details := map[string]any{}
	if in.Rating < 1 || in.Rating > 5 {
		details["rating"] = "must be between 1 and 5"
	}
	if comment == "" {
		details["comment"] = "must be non-empty"
	}
	if !domain.IsFeedbackServiceType(in.ServiceType) {
		details["serviceType"] = "must be one of " + strings.Join(domain.FeedbackServiceTypes, ", ")
	}
	if len(details) > 0 {
		return domain.Feedback{}, apperr.Validation("invalid feedback", details)
	}

	fb := domain.Feedback{
		ID:          domain.FeedbackID(s.newID()),
		UserID:      u.ID,
		Rating:      in.Rating,
		Comment:     comment,
		Date:        s.today(),
		ServiceType: in.ServiceType,
	}
	updated := u.Clone()
	updated.Feedback = append(updated.Feedback, fb)
	if _, err := s.accounts.UpdateUser(ctx, token, updated); err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

func (s *Service) UpdateProfile(ctx context.Context, token string, in UpdateProfileInput) (domain.User, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	updated := u.Clone()

	if in.Name.IsSpecified() {
		name := ""
		if !in.Name.IsNull() {
			name = domain.NormalizeHumanName(in.Name.Value())
		}
		if name == "" {
			return domain.User{}, apperr.Validation("invalid name", map[string]any{"name": "must be non-empty"})
		}
		updated.Name = name
	}
	if in.Email.IsSpecified() {
		if in.Email.IsNull() {
			return domain.User{}, apperr.Validation("invalid email", map[string]any{"email": "must not be null"})
		}
		email := domain.NormalizeEmail(in.Email.Value())
		if err := auth.ValidateEmail(email); err != nil {
			return domain.User{}, apperr.Validation("invalid email", map[string]any{"email": err.Error()})
		}
		updated.Email = email
	}
	if in.Phone.IsSpecified() {
		if in.Phone.IsNull() {
			updated.Phone = ""
		} else {
			updated.Phone = strings.TrimSpace(in.Phone.Value())
		}
	}

	return s.accounts.UpdateUser(ctx, token, updated)
}

func (s *Service) ChangePassword(ctx context.Context, token, current, next, confirm string) error {
	return s.accounts.ChangePassword(ctx, token, current, next, confirm)
}

// QuotePlans prices every plan for duration. An unknown duration is rejected.
func (s *Service) QuotePlans(duration domain.Duration) ([]domain.PlanQuote, error) {
	if duration == "" {
		duration = domain.DurationOneMonth
	}
	if !duration.Valid() {
		return nil, apperr.Validation("invalid duration", map[string]any{"duration": "must be 1-month, 6-month or 1-year"})
	}
	plans := domain.Plans()
	out := make([]domain.PlanQuote, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Quote(duration))
	}
	return out, nil
}

func (s *Service) ChooseSubscription(ctx context.Context, token string, tier domain.Tier, duration domain.Duration) (domain.User, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	details := map[string]any{}
	if !tier.Valid() {
		details["tier"] = "must be basic, premium or luxury"
	}
	if !duration.Valid() {
		details["duration"] = "must be 1-month, 6-month or 1-year"
	}
	if len(details) > 0 {
		return domain.User{}, apperr.Validation("invalid subscription", details)
	}

	start := s.today()
	updated := u.Clone()
	updated.Subscription = domain.Subscription{
		Tier:      tier,
		Duration:  duration,
		StartDate: start,
		EndDate:   duration.EndDate(start),
		Status:    domain.SubscriptionActive,
	}
	return s.accounts.UpdateUser(ctx, token, updated)
}

// Notifications lists the caller's targeted notifications and broadcasts, newest first.
func (s *Service) Notifications(ctx context.Context, token string) ([]domain.Notification, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return nil, err
	}
	all, err := s.notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, 0, len(all))
	for _, n := range all {
		if n.VisibleTo(u.ID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, token string, id domain.NotificationID) (domain.Notification, error) {
	u, err := s.me(ctx, token)
	if err != nil {
		return domain.Notification{}, err
	}
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, notificationrepo.ErrNotFound) {
			return domain.Notification{}, apperr.NotFound("Notification not found.")
		}
		return domain.Notification{}, fmt.Errorf("load notification: %w", err)
	}
	if !n.VisibleTo(u.ID) {
		return domain.Notification{}, apperr.NotFound("Notification not found.")
	}
	if n.Read {
		return n, nil
	}
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	n.Read = true
	return n, nil
}

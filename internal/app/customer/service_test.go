package customer

import (
	"context"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memclock "github.com/aquaclean/carwash-api/internal/adapters/memory/clock"
	memnotifications "github.com/aquaclean/carwash-api/internal/adapters/memory/notificationrepo"
	memrevenue "github.com/aquaclean/carwash-api/internal/adapters/memory/revenuerepo"
	memsessions "github.com/aquaclean/carwash-api/internal/adapters/memory/sessionstore"
	memusers "github.com/aquaclean/carwash-api/internal/adapters/memory/userrepo"
	"github.com/aquaclean/carwash-api/internal/adapters/seed"
	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/domain"
)

type fixture struct {
	svc   *Service
	auth  *auth.Service
	users *memusers.Repo
	clk   *memclock.ManualClock
	token string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	users := memusers.NewRepo()
	notifications := memnotifications.NewRepo()
	clk := memclock.NewManualClock(time.Date(2024, 7, 9, 15, 0, 0, 0, time.UTC))
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	if _, err := seed.Load(ctx, seed.Target{
		Users:         users,
		Revenue:       memrevenue.NewRepo(),
		Notifications: notifications,
	}, hasher, "password123", clk.Now()); err != nil {
		t.Fatalf("seed.Load() err=%v", err)
	}

	authSvc := auth.NewService(users, memsessions.NewStore(), clk, hasher, auth.Config{
		AdminEmail:    "admin@carwash.com",
		AdminPassword: "admin123",
		SessionTTL:    time.Hour,
		SignupEnabled: true,
	}, nil)
	sess, err := authSvc.Login(ctx, "john.smith@email.com", "password123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}

	return fixture{
		svc:   NewService(authSvc, notifications, clk),
		auth:  authSvc,
		users: users,
		clk:   clk,
		token: sess.Token,
	}
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("err=%v (%T), want *apperr.Error", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("err status=%d code=%q, want %d %q", ae.Status, ae.Code, status, code)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	d, err := f.svc.Dashboard(context.Background(), f.token)
	if err != nil {
		t.Fatalf("Dashboard() err=%v", err)
	}
	if d.CarCount != 2 || d.FeedbackCount != 1 || d.UpcomingCount != 1 {
		t.Fatalf("Dashboard()=%+v", d)
	}
	if d.NextWash == nil || d.NextWash.ID != "1" {
		t.Fatalf("NextWash=%+v, want appointment 1", d.NextWash)
	}
	if d.Plan.Name != "Premium Clean" {
		t.Fatalf("Plan=%+v", d.Plan)
	}
	// Subscription ends 2024-07-15.
	if d.DaysRemaining != 6 || !d.RenewalDue {
		t.Fatalf("DaysRemaining=%d RenewalDue=%v", d.DaysRemaining, d.RenewalDue)
	}
}

func TestCars_AddUpdateRemove(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddCar(ctx, f.token, CarInput{Make: "", Model: "Civic", Year: 1800})
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	car, err := f.svc.AddCar(ctx, f.token, CarInput{Make: "Mazda", Model: "CX-5", Year: 2024, Color: "Red", LicensePlate: "mzd-555"})
	if err != nil {
		t.Fatalf("AddCar() err=%v", err)
	}
	if car.UserID != "1" || car.LicensePlate != "MZD-555" || !car.AddedDate.Equal(domain.MustDate("2024-07-09")) {
		t.Fatalf("AddCar()=%+v", car)
	}

	upd, err := f.svc.UpdateCar(ctx, f.token, car.ID, CarInput{Make: "Mazda", Model: "CX-50", Year: 2025, Color: "Blue", LicensePlate: "MZD-555"})
	if err != nil {
		t.Fatalf("UpdateCar() err=%v", err)
	}
	if upd.Model != "CX-50" || upd.AddedDate != car.AddedDate {
		t.Fatalf("UpdateCar()=%+v", upd)
	}
	_, err = f.svc.UpdateCar(ctx, f.token, "missing", CarInput{Make: "A", Model: "B", Year: 2020, LicensePlate: "X"})
	requireCode(t, err, http.StatusNotFound, apperr.CodeNotFound)

	if err := f.svc.RemoveCar(ctx, f.token, car.ID); err != nil {
		t.Fatalf("RemoveCar() err=%v", err)
	}
	cars, _ := f.svc.ListCars(ctx, f.token)
	if len(cars) != 2 {
		t.Fatalf("ListCars() len=%d, want 2", len(cars))
	}
}

func TestRemoveCar_RefusedWhileScheduled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.RemoveCar(ctx, f.token, "1")
	requireCode(t, err, http.StatusConflict, apperr.CodeCarHasScheduledAppointments)

	if _, err := f.svc.CancelAppointment(ctx, f.token, "1"); err != nil {
		t.Fatalf("CancelAppointment() err=%v", err)
	}
	if err := f.svc.RemoveCar(ctx, f.token, "1"); err != nil {
		t.Fatalf("RemoveCar() after cancel err=%v", err)
	}
}

func TestBookAppointment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	good := BookingInput{
		CarID:    "2",
		Date:     domain.MustDate("2024-07-09"),
		Time:     "9:00 AM",
		Service:  domain.TierLuxury,
		WashType: "Paint Protection",
	}
	appt, err := f.svc.BookAppointment(ctx, f.token, good)
	if err != nil {
		t.Fatalf("BookAppointment() err=%v", err)
	}
	if appt.Status != domain.AppointmentScheduled || appt.UserID != "1" {
		t.Fatalf("BookAppointment()=%+v", appt)
	}

	list, _ := f.svc.ListAppointments(ctx, f.token)
	if len(list.Upcoming) != 2 || len(list.Past) != 0 {
		t.Fatalf("ListAppointments()=%+v", list)
	}

	bad := []BookingInput{
		{CarID: "3", Date: good.Date, Time: good.Time, Service: good.Service, WashType: good.WashType},
		{CarID: "2", Date: domain.MustDate("2024-07-08"), Time: good.Time, Service: good.Service, WashType: good.WashType},
		{CarID: "2", Date: good.Date, Time: "7:00 AM", Service: good.Service, WashType: good.WashType},
		{CarID: "2", Date: good.Date, Time: good.Time, Service: domain.TierBasic, WashType: "Paint Protection"},
		{CarID: "2", Date: good.Date, Time: good.Time, Service: "platinum", WashType: good.WashType},
	}
	for i, in := range bad {
		_, err := f.svc.BookAppointment(ctx, f.token, in)
		if !apperr.HasCode(err, apperr.CodeValidation) {
			t.Fatalf("bad[%d] err=%v, want validation error", i, err)
		}
	}
}

func TestCancelAppointment_OnlyFromScheduled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.CancelAppointment(ctx, f.token, "1")
	if err != nil {
		t.Fatalf("CancelAppointment() err=%v", err)
	}
	if got.Status != domain.AppointmentCancelled {
		t.Fatalf("status=%q", got.Status)
	}
	_, err = f.svc.CancelAppointment(ctx, f.token, "1")
	requireCode(t, err, http.StatusConflict, apperr.CodeInvalidStatusTransition)

	_, err = f.svc.CancelAppointment(ctx, f.token, "2") // Sarah's
	requireCode(t, err, http.StatusNotFound, apperr.CodeNotFound)
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitFeedback(ctx, f.token, FeedbackInput{Rating: 6, Comment: " ", ServiceType: "Car Spa"})
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	fb, err := f.svc.SubmitFeedback(ctx, f.token, FeedbackInput{Rating: 4, Comment: "Quick and friendly", ServiceType: "Exterior Wash"})
	if err != nil {
		t.Fatalf("SubmitFeedback() err=%v", err)
	}
	if !fb.Date.Equal(domain.MustDate("2024-07-09")) {
		t.Fatalf("Date=%v", fb.Date)
	}
	list, _ := f.svc.ListFeedback(ctx, f.token)
	if len(list) != 2 || list[1].ID != fb.ID {
		t.Fatalf("ListFeedback()=%+v", list)
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.UpdateProfile(ctx, f.token, UpdateProfileInput{
		Name:  Some("  Johnny   Smith "),
		Phone: Null[string](),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() err=%v", err)
	}
	if u.Name != "Johnny Smith" || u.Phone != "" || u.Email != "john.smith@email.com" {
		t.Fatalf("UpdateProfile()=%+v", u)
	}

	_, err = f.svc.UpdateProfile(ctx, f.token, UpdateProfileInput{Email: Some("sarah.johnson@email.com")})
	requireCode(t, err, http.StatusConflict, apperr.CodeEmailAlreadyInUse)

	_, err = f.svc.UpdateProfile(ctx, f.token, UpdateProfileInput{Email: Null[string]()})
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	_, err = f.svc.UpdateProfile(ctx, f.token, UpdateProfileInput{Name: Some("   ")})
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)
}

func TestQuotePlansAndChooseSubscription(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	quotes, err := f.svc.QuotePlans(domain.DurationOneYear)
	if err != nil {
		t.Fatalf("QuotePlans() err=%v", err)
	}
	if len(quotes) != 3 || quotes[0].Total != 287.90 || quotes[0].MonthlyEquivalent != 23.99 {
		t.Fatalf("QuotePlans()=%+v", quotes)
	}
	_, err = f.svc.QuotePlans("2-year")
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	u, err := f.svc.ChooseSubscription(ctx, f.token, domain.TierLuxury, domain.DurationSixMonth)
	if err != nil {
		t.Fatalf("ChooseSubscription() err=%v", err)
	}
	sub := u.Subscription
	if sub.Tier != domain.TierLuxury || !sub.StartDate.Equal(domain.MustDate("2024-07-09")) || !sub.EndDate.Equal(domain.MustDate("2025-01-09")) {
		t.Fatalf("Subscription=%+v", sub)
	}
}

func TestNotifications(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	list, err := f.svc.Notifications(ctx, f.token)
	if err != nil {
		t.Fatalf("Notifications() err=%v", err)
	}
	// John sees his reminder and the broadcast, newest first; Sarah's is hidden.
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "2" {
		t.Fatalf("Notifications()=%+v", list)
	}

	n, err := f.svc.MarkNotificationRead(ctx, f.token, "1")
	if err != nil || !n.Read {
		t.Fatalf("MarkNotificationRead() n=%+v err=%v", n, err)
	}
	_, err = f.svc.MarkNotificationRead(ctx, f.token, "3")
	requireCode(t, err, http.StatusNotFound, apperr.CodeNotFound)
}

func TestWrites_AdminSessionIsReadOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	admin, err := f.auth.Login(ctx, "admin@carwash.com", "admin123")
	if err != nil {
		t.Fatalf("Login(admin) err=%v", err)
	}
	d, err := f.svc.Dashboard(ctx, admin.Token)
	if err != nil || d.CarCount != 0 {
		t.Fatalf("Dashboard(admin) d=%+v err=%v", d, err)
	}
	_, err = f.svc.ChooseSubscription(ctx, admin.Token, domain.TierBasic, domain.DurationOneMonth)
	requireCode(t, err, http.StatusForbidden, apperr.CodeAdminProfileReadOnly)
}

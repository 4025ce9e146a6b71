package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	memclock "github.com/aquaclean/carwash-api/internal/adapters/memory/clock"
	memsessions "github.com/aquaclean/carwash-api/internal/adapters/memory/sessionstore"
	memusers "github.com/aquaclean/carwash-api/internal/adapters/memory/userrepo"
	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

type fixture struct {
	svc      *Service
	users    *memusers.Repo
	sessions *memsessions.Store
	clk      *memclock.ManualClock
}

func testConfig() Config {
	return Config{
		AdminEmail:         "admin@carwash.com",
		AdminPassword:      "admin123",
		SessionTTL:         time.Hour,
		SignupEnabled:      true,
		LoginRatePerMinute: 5,
		LoginBurst:         5,
	}
}

func newFixture(t *testing.T, cfg Config) fixture {
	t.Helper()
	users := memusers.NewRepo()
	sessions := memsessions.NewStore()
	clk := memclock.NewManualClock(time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC))
	svc := NewService(users, sessions, clk, NewBcryptHasher(bcrypt.MinCost), cfg, nil)
	return fixture{svc: svc, users: users, sessions: sessions, clk: clk}
}

func seedJohn(t *testing.T, f fixture) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() err=%v", err)
	}
	u := domain.User{
		ID:       "1",
		Name:     "John Smith",
		Email:    "john.smith@email.com",
		Phone:    "+1 (555) 123-4567",
		Role:     domain.RoleCustomer,
		JoinDate: domain.MustDate("2024-01-15"),
		Subscription: domain.Subscription{
			Tier:      domain.TierPremium,
			Duration:  domain.DurationSixMonth,
			StartDate: domain.MustDate("2024-01-15"),
			EndDate:   domain.MustDate("2024-07-15"),
			Status:    domain.SubscriptionActive,
		},
		TotalSpent: 450,
		Cars: []domain.Car{
			{ID: "1", UserID: "1", Make: "Toyota", Model: "Camry", Year: 2022, Color: "White", LicensePlate: "ABC-123", AddedDate: domain.MustDate("2024-01-15")},
		},
		Appointments: []domain.Appointment{
			{ID: "1", UserID: "1", CarID: "1", Date: domain.MustDate("2024-07-10"), Time: "10:00 AM", Service: domain.TierPremium, Status: domain.AppointmentScheduled, WashType: "Exterior & Interior"},
		},
	}
	if err := f.users.Create(context.Background(), userrepo.Record{User: u, PasswordHash: hash}); err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	return u
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

func TestLogin_AdminCredentials(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	sess, err := f.svc.Login(context.Background(), "admin@carwash.com", "admin123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	if !sess.IsAdmin() {
		t.Fatalf("IsAdmin()=false, want true")
	}
	if sess.User.Subscription.Tier != domain.TierLuxury || sess.User.ID != domain.AdminUserID {
		t.Fatalf("admin user=%+v", sess.User)
	}
	if sess.Token == "" || f.sessions.Len() != 1 {
		t.Fatalf("token=%q sessions=%d, want issued session", sess.Token, f.sessions.Len())
	}

	got, err := f.svc.Authenticate(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("Authenticate() err=%v", err)
	}
	if !got.IsAdmin() {
		t.Fatalf("Authenticate().IsAdmin()=false")
	}
}

func TestLogin_SeededUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	john := seedJohn(t, f)

	sess, err := f.svc.Login(context.Background(), "John.Smith@email.com", "password123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	if sess.User.ID != john.ID || sess.IsAdmin() {
		t.Fatalf("session user=%+v", sess.User)
	}
	if want := f.clk.Now().Add(time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt=%v, want %v", sess.ExpiresAt, want)
	}
}

func TestLogin_BadCredentialsLeaveSessionsUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	seedJohn(t, f)

	cases := []struct{ email, password string }{
		{"john.smith@email.com", "wrong"},
		{"nobody@email.com", "password123"},
		{"admin@carwash.com", "password123"},
		{"", ""},
	}
	for _, tc := range cases {
		_, err := f.svc.Login(context.Background(), tc.email, tc.password)
		requireCode(t, err, http.StatusUnauthorized, apperr.CodeInvalidCredentials)
	}
	if n := f.sessions.Len(); n != 0 {
		t.Fatalf("sessions=%d after failed logins, want 0", n)
	}
}

func TestLogin_Throttled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.LoginRatePerMinute = 1
	cfg.LoginBurst = 2
	f := newFixture(t, cfg)
	seedJohn(t, f)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(context.Background(), "john.smith@email.com", "nope")
		requireCode(t, err, http.StatusUnauthorized, apperr.CodeInvalidCredentials)
	}
	_, err := f.svc.Login(context.Background(), "john.smith@email.com", "password123")
	requireCode(t, err, http.StatusTooManyRequests, apperr.CodeTooManyLoginAttempts)

	// Another email has its own bucket.
	if _, err := f.svc.Login(context.Background(), "admin@carwash.com", "admin123"); err != nil {
		t.Fatalf("Login(admin) err=%v", err)
	}

	f.clk.Advance(time.Minute)
	if _, err := f.svc.Login(context.Background(), "john.smith@email.com", "password123"); err != nil {
		t.Fatalf("Login() after refill err=%v", err)
	}
}

func TestLogout_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	sess, err := f.svc.Login(context.Background(), "admin@carwash.com", "admin123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.svc.Logout(context.Background(), sess.Token); err != nil {
			t.Fatalf("Logout() #%d err=%v", i, err)
		}
	}
	_, err = f.svc.Authenticate(context.Background(), sess.Token)
	requireCode(t, err, http.StatusUnauthorized, apperr.CodeUnauthorized)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	sess, err := f.svc.Login(context.Background(), "admin@carwash.com", "admin123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	f.clk.Advance(time.Hour)
	_, err = f.svc.Authenticate(context.Background(), sess.Token)
	requireCode(t, err, http.StatusUnauthorized, apperr.CodeUnauthorized)
	if n := f.sessions.Len(); n != 0 {
		t.Fatalf("expired session not dropped, sessions=%d", n)
	}

	_, err = f.svc.Authenticate(context.Background(), "")
	requireCode(t, err, http.StatusUnauthorized, apperr.CodeUnauthorized)
}

type failingDeleteStore struct {
	*memsessions.Store
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestAuthenticate_ExpiredSessionDeleteFailureIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	clk := memclock.NewManualClock(time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC))
	store := failingDeleteStore{Store: memsessions.NewStore()}
	svc := NewService(memusers.NewRepo(), store, clk, NewBcryptHasher(bcrypt.MinCost), testConfig(), zap.New(core))

	sess, err := svc.Login(context.Background(), "admin@carwash.com", "admin123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	clk.Advance(time.Hour)
	_, err = svc.Authenticate(context.Background(), sess.Token)
	requireCode(t, err, http.StatusUnauthorized, apperr.CodeUnauthorized)

	if n := logs.FilterMessage("drop expired session failed").Len(); n != 1 {
		t.Fatalf("warn entries=%d, want 1", n)
	}
}

func TestSignup_RequiresNameAndEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	seedJohn(t, f)

	cases := []SignupInput{
		{Name: "", Email: "new@email.com"},
		{Name: "   ", Email: "new@email.com"},
		{Name: "New User", Email: ""},
		{Name: "New User", Email: "not-an-email"},
		{Name: "New User", Email: "new@email.com", Password: "password123", ConfirmPassword: "password124"},
		{Name: "New User", Email: "new@email.com", Password: strings.Repeat("p", 80), ConfirmPassword: strings.Repeat("p", 80)},
	}
	for _, in := range cases {
		_, err := f.svc.Signup(context.Background(), in)
		requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)
	}

	users, _ := f.users.List(context.Background())
	if len(users) != 1 {
		t.Fatalf("user count=%d after failed signups, want 1", len(users))
	}
}

func TestSignup_AppendsOneUserAndLogsIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	seedJohn(t, f)

	sess, err := f.svc.Signup(context.Background(), SignupInput{
		Name:            "  Jane   Doe ",
		Email:           "jane@email.com",
		Phone:           "+1 (555) 999-0000",
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
	})
	if err != nil {
		t.Fatalf("Signup() err=%v", err)
	}

	users, _ := f.users.List(context.Background())
	if len(users) != 2 || users[1].ID != sess.User.ID {
		t.Fatalf("users=%+v, want new user appended", users)
	}
	u := sess.User
	if u.Name != "Jane Doe" || u.Role != domain.RoleCustomer || u.TotalSpent != 0 {
		t.Fatalf("new user=%+v", u)
	}
	sub := u.Subscription
	if sub.Tier != domain.TierBasic || sub.Duration != domain.DurationOneMonth || sub.Status != domain.SubscriptionActive {
		t.Fatalf("subscription=%+v", sub)
	}
	if !sub.StartDate.Equal(domain.MustDate("2024-07-01")) || !sub.EndDate.Equal(sub.StartDate.AddDate(0, 0, 30)) {
		t.Fatalf("subscription dates start=%v end=%v", sub.StartDate, sub.EndDate)
	}

	if _, err := f.svc.Authenticate(context.Background(), sess.Token); err != nil {
		t.Fatalf("Authenticate(signup token) err=%v", err)
	}
	if _, err := f.svc.Login(context.Background(), "jane@email.com", "supersecret"); err != nil {
		t.Fatalf("Login(new user) err=%v", err)
	}
}

func TestSignup_Conflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	seedJohn(t, f)

	_, err := f.svc.Signup(context.Background(), SignupInput{Name: "John", Email: "JOHN.SMITH@email.com"})
	requireCode(t, err, http.StatusConflict, apperr.CodeEmailAlreadyInUse)

	_, err = f.svc.Signup(context.Background(), SignupInput{Name: "Mallory", Email: "admin@carwash.com"})
	requireCode(t, err, http.StatusConflict, apperr.CodeEmailAlreadyInUse)
}

func TestSignup_Disabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SignupEnabled = false
	f := newFixture(t, cfg)

	_, err := f.svc.Signup(context.Background(), SignupInput{Name: "Jane", Email: "jane@email.com"})
	requireCode(t, err, http.StatusForbidden, apperr.CodeSignupDisabled)
}

func TestUpdateUser_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	john := seedJohn(t, f)
	sess, err := f.svc.Login(context.Background(), john.Email, "password123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}

	updated := john.Clone()
	updated.Phone = "+1 (555) 000-1111"
	updated.Role = domain.RoleAdmin // ignored

	first, err := f.svc.UpdateUser(context.Background(), sess.Token, updated)
	if err != nil {
		t.Fatalf("UpdateUser() #1 err=%v", err)
	}
	recA, _ := f.users.GetByID(context.Background(), john.ID)

	second, err := f.svc.UpdateUser(context.Background(), sess.Token, updated)
	if err != nil {
		t.Fatalf("UpdateUser() #2 err=%v", err)
	}
	recB, _ := f.users.GetByID(context.Background(), john.ID)

	if first.Role != domain.RoleCustomer || second.Role != domain.RoleCustomer {
		t.Fatalf("role not preserved: %q %q", first.Role, second.Role)
	}
	if recA.User.Phone != "+1 (555) 000-1111" || recA.User.Phone != recB.User.Phone || len(recA.User.Cars) != len(recB.User.Cars) {
		t.Fatalf("stored records differ: %+v vs %+v", recA.User, recB.User)
	}
	if string(recA.PasswordHash) != string(recB.PasswordHash) {
		t.Fatalf("password hash changed")
	}
}

func TestUpdateUser_RejectsForeignAndInvalidRecords(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	john := seedJohn(t, f)
	sess, err := f.svc.Login(context.Background(), john.Email, "password123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}

	other := john.Clone()
	other.ID = "2"
	_, err = f.svc.UpdateUser(context.Background(), sess.Token, other)
	requireCode(t, err, http.StatusForbidden, apperr.CodeForbidden)

	bad := john.Clone()
	bad.Cars[0].UserID = "2"
	_, err = f.svc.UpdateUser(context.Background(), sess.Token, bad)
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	orphan := john.Clone()
	orphan.Cars = nil
	_, err = f.svc.UpdateUser(context.Background(), sess.Token, orphan)
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	admin, err := f.svc.Login(context.Background(), "admin@carwash.com", "admin123")
	if err != nil {
		t.Fatalf("Login(admin) err=%v", err)
	}
	_, err = f.svc.UpdateUser(context.Background(), admin.Token, admin.User)
	requireCode(t, err, http.StatusForbidden, apperr.CodeAdminProfileReadOnly)
}

func TestAdminUpdateUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	john := seedJohn(t, f)
	admin, _ := f.svc.Login(context.Background(), "admin@carwash.com", "admin123")
	user, _ := f.svc.Login(context.Background(), john.Email, "password123")

	updated := john.Clone()
	updated.Appointments[0].Status = domain.AppointmentCompleted
	got, err := f.svc.AdminUpdateUser(context.Background(), admin.Token, updated)
	if err != nil {
		t.Fatalf("AdminUpdateUser() err=%v", err)
	}
	if got.Appointments[0].Status != domain.AppointmentCompleted {
		t.Fatalf("status=%q", got.Appointments[0].Status)
	}

	_, err = f.svc.AdminUpdateUser(context.Background(), user.Token, updated)
	requireCode(t, err, http.StatusForbidden, apperr.CodeForbidden)

	missing := updated.Clone()
	missing.ID = "404"
	_, err = f.svc.AdminUpdateUser(context.Background(), admin.Token, missing)
	requireCode(t, err, http.StatusNotFound, apperr.CodeNotFound)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testConfig())
	john := seedJohn(t, f)
	sess, _ := f.svc.Login(context.Background(), john.Email, "password123")

	err := f.svc.ChangePassword(context.Background(), sess.Token, "password123", "short", "short")
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	err = f.svc.ChangePassword(context.Background(), sess.Token, "password123", "newpassword1", "newpassword2")
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	long := strings.Repeat("x", MaxPasswordBytes+1)
	err = f.svc.ChangePassword(context.Background(), sess.Token, "password123", long, long)
	requireCode(t, err, http.StatusUnprocessableEntity, apperr.CodeValidation)

	err = f.svc.ChangePassword(context.Background(), sess.Token, "wrong", "newpassword1", "newpassword1")
	requireCode(t, err, http.StatusUnauthorized, apperr.CodeInvalidCredentials)

	if err := f.svc.ChangePassword(context.Background(), sess.Token, "password123", "newpassword1", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword() err=%v", err)
	}
	if _, err := f.svc.Login(context.Background(), john.Email, "newpassword1"); err != nil {
		t.Fatalf("Login(new password) err=%v", err)
	}
}

func TestHashToken_IsStableHex(t *testing.T) {
	t.Parallel()

	a, b := HashToken("abc"), HashToken("abc")
	if a != b || len(a) != 64 {
		t.Fatalf("HashToken()=%q/%q", a, b)
	}
	if HashToken("abd") == a {
		t.Fatalf("distinct tokens share a hash")
	}
}

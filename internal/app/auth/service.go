package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/domain"
	clockport "github.com/aquaclean/carwash-api/internal/ports/out/clock"
	"github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

// Service owns sessions and is the only writer of user records.
type Service struct {
	users    userrepo.Repository
	sessions sessionstore.Store
	clk      clockport.Clock
	hasher   PasswordHasher
	log      *zap.Logger

	cfg      Config
	throttle *loginThrottle

	newUserID func() domain.UserID
	newToken  func() (string, error)
}

func NewService(users userrepo.Repository, sessions sessionstore.Store, clk clockport.Clock, hasher PasswordHasher, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		clk:      clk,
		hasher:   hasher,
		log:      log,
		cfg:      cfg,
		throttle: newLoginThrottle(cfg.LoginRatePerMinute, cfg.LoginBurst),
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
		newToken: newSessionToken,
	}
}

func invalidCredentials() *apperr.Error {
	return &apperr.Error{
		Status:  http.StatusUnauthorized,
		Code:    apperr.CodeInvalidCredentials,
		Message: "Invalid email or password.",
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = domain.NormalizeEmail(email)
	if !s.throttle.allow(email, s.clk.Now()) {
		s.log.Info("login throttled", zap.String("email", email))
		return Session{}, &apperr.Error{
			Status:  http.StatusTooManyRequests,
			Code:    apperr.CodeTooManyLoginAttempts,
			Message: "Too many login attempts. Try again later.",
		}
	}

	if s.isAdminCredential(email, password) {
		sess, err := s.issue(ctx, domain.NewAdminUser(s.cfg.AdminEmail))
		if err != nil {
			return Session{}, err
		}
		s.throttle.reset(email)
		s.log.Info("login succeeded", zap.String("user_id", string(domain.AdminUserID)), zap.String("role", string(domain.RoleAdmin)))
		return sess, nil
	}

	rec, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.log.Info("login failed", zap.String("reason", "unknown email"))
			return Session{}, invalidCredentials()
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if len(rec.PasswordHash) == 0 || s.hasher.Compare(rec.PasswordHash, password) != nil {
		s.log.Info("login failed", zap.String("user_id", string(rec.User.ID)), zap.String("reason", "password mismatch"))
		return Session{}, invalidCredentials()
	}

	sess, err := s.issue(ctx, rec.User)
	if err != nil {
		return Session{}, err
	}
	s.throttle.reset(email)
	s.log.Info("login succeeded", zap.String("user_id", string(rec.User.ID)), zap.String("role", string(rec.User.Role)))
	return sess, nil
}

func (s *Service) isAdminCredential(email, password string) bool {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return false
	}
	if !strings.EqualFold(email, s.cfg.AdminEmail) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
}

func (s *Service) issue(ctx context.Context, u domain.User) (Session, error) {
	token, err := s.newToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}
	now := s.clk.Now()
	expires := now.Add(s.cfg.SessionTTL)
	if err := s.sessions.Put(ctx, sessionstore.Session{
		TokenHash: HashToken(token),
		UserID:    u.ID,
		Role:      u.Role,
		CreatedAt: now,
		ExpiresAt: expires,
	}); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{Token: token, User: u, ExpiresAt: expires}, nil
}

// Logout ends the session. Unknown and empty tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info("logout")
	return nil
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	if !s.cfg.SignupEnabled {
		return Session{}, &apperr.Error{
			Status:  http.StatusForbidden,
			Code:    apperr.CodeSignupDisabled,
			Message: "User registration is disabled.",
		}
	}

	name := domain.NormalizeHumanName(in.Name)
	email := domain.NormalizeEmail(in.Email)
	details := map[string]any{}
	if name == "" {
		details["name"] = "must be non-empty"
	}
	if err := validateEmail(email); err != nil {
		details["email"] = err.Error()
	}
	if in.Password != "" || in.ConfirmPassword != "" {
		if msg := validateNewPassword(in.Password, in.ConfirmPassword); msg != "" {
			details["password"] = msg
		}
	}
	if len(details) > 0 {
		return Session{}, apperr.Validation("invalid signup", details)
	}

	if strings.EqualFold(email, s.cfg.AdminEmail) {
		return Session{}, emailInUse()
	}

	var hash []byte
	if in.Password != "" {
		h, err := s.hasher.Hash(in.Password)
		if err != nil {
			return Session{}, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	now := s.clk.Now()
	today := domain.DateOf(now)
	u := domain.User{
		ID:       s.newUserID(),
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     domain.RoleCustomer,
		JoinDate: today,
		Subscription: domain.Subscription{
			Tier:      domain.TierBasic,
			Duration:  domain.DurationOneMonth,
			StartDate: today,
			EndDate:   today.AddDate(0, 0, 30),
			Status:    domain.SubscriptionActive,
		},
		Cars:         []domain.Car{},
		Appointments: []domain.Appointment{},
		Feedback:     []domain.Feedback{},
	}
	if err := s.users.Create(ctx, userrepo.Record{User: u, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return Session{}, emailInUse()
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("signup", zap.String("user_id", string(u.ID)))

	return s.issue(ctx, u)
}

// Authenticate resolves a bearer token to its session and the current user record.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, apperr.Unauthorized("Missing session token.")
	}
	hash := HashToken(token)
	stored, err := s.sessions.Get(ctx, hash)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return Session{}, apperr.Unauthorized("Invalid or expired session.")
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if !s.clk.Now().Before(stored.ExpiresAt) {
		if err := s.sessions.Delete(ctx, hash); err != nil {
			s.log.Warn("drop expired session failed", zap.String("user_id", string(stored.UserID)), zap.Error(err))
		}
		return Session{}, apperr.Unauthorized("Invalid or expired session.")
	}

	if stored.Role == domain.RoleAdmin && stored.UserID == domain.AdminUserID {
		return Session{Token: token, User: domain.NewAdminUser(s.cfg.AdminEmail), ExpiresAt: stored.ExpiresAt}, nil
	}
	rec, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return Session{}, apperr.Unauthorized("Invalid or expired session.")
		}
		return Session{}, fmt.Errorf("load session user: %w", err)
	}
	return Session{Token: token, User: rec.User, ExpiresAt: stored.ExpiresAt}, nil
}

// RequireAdmin authenticates token and rejects non-admin sessions.
func (s *Service) RequireAdmin(ctx context.Context, token string) (Session, error) {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if !sess.IsAdmin() {
		return Session{}, apperr.Forbidden("Administrator access required.")
	}
	return sess, nil
}

// UpdateUser replaces the session user's record wholesale (last writer wins).
func (s *Service) UpdateUser(ctx context.Context, token string, updated domain.User) (domain.User, error) {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if sess.IsAdmin() {
		return domain.User{}, adminReadOnly()
	}
	if updated.ID != sess.User.ID {
		return domain.User{}, apperr.Forbidden("Cannot update another user's profile.")
	}
	return s.save(ctx, sess.User, updated)
}

// AdminUpdateUser replaces any stored user's record on behalf of an administrator.
func (s *Service) AdminUpdateUser(ctx context.Context, token string, updated domain.User) (domain.User, error) {
	if _, err := s.RequireAdmin(ctx, token); err != nil {
		return domain.User{}, err
	}
	rec, err := s.users.GetByID(ctx, updated.ID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, apperr.NotFound("User not found.")
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return s.save(ctx, rec.User, updated)
}

func (s *Service) save(ctx context.Context, stored domain.User, updated domain.User) (domain.User, error) {
	u := updated.Clone()
	u.Role = stored.Role
	u.JoinDate = stored.JoinDate
	u.Name = domain.NormalizeHumanName(u.Name)
	u.Email = domain.NormalizeEmail(u.Email)

	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}
	if strings.EqualFold(u.Email, s.cfg.AdminEmail) {
		return domain.User{}, emailInUse()
	}

	if err := s.users.Update(ctx, u, s.clk.Now()); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrEmailTaken):
			return domain.User{}, emailInUse()
		case errors.Is(err, userrepo.ErrNotFound):
			return domain.User{}, apperr.NotFound("User not found.")
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return u.Clone(), nil
}

func (s *Service) ChangePassword(ctx context.Context, token, current, next, confirm string) error {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if sess.IsAdmin() {
		return adminReadOnly()
	}
	if msg := validateNewPassword(next, confirm); msg != "" {
		return apperr.Validation("invalid password", map[string]any{"newPassword": msg})
	}

	rec, err := s.users.GetByID(ctx, sess.User.ID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(rec.PasswordHash) > 0 && s.hasher.Compare(rec.PasswordHash, current) != nil {
		return invalidCredentials()
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPasswordHash(ctx, rec.User.ID, hash, s.clk.Now()); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	s.log.Info("password changed", zap.String("user_id", string(rec.User.ID)))
	return nil
}

func emailInUse() *apperr.Error {
	return apperr.Conflict(apperr.CodeEmailAlreadyInUse, "Email is already in use.")
}

func adminReadOnly() *apperr.Error {
	return &apperr.Error{
		Status:  http.StatusForbidden,
		Code:    apperr.CodeAdminProfileReadOnly,
		Message: "The administrator profile is managed through configuration.",
	}
}

// ValidateEmail requires a bare address with a dotted domain ("a@b.c"), not a display-name form.
func ValidateEmail(email string) error {
	return validateEmail(email)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("must be a valid email address")
	}
	at := strings.LastIndex(email, "@")
	if host := email[at+1:]; !strings.Contains(host, ".") || strings.HasSuffix(host, ".") {
		return errors.New("must be a valid email address")
	}
	return nil
}

func validateNewPassword(password, confirm string) string {
	if len(password) < MinPasswordLength {
		return fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	}
	if password != confirm {
		return "confirmation does not match"
	}
	return ""
}

func validateUser(u domain.User) error {
	details := map[string]any{}
	if u.Name == "" {
		details["name"] = "must be non-empty"
	}
	if err := validateEmail(u.Email); err != nil {
		details["email"] = err.Error()
	}
	sub := u.Subscription
	if !sub.Tier.Valid() {
		details["subscription.tier"] = "must be basic, premium or luxury"
	}
	if !sub.Duration.Valid() {
		details["subscription.duration"] = "must be 1-month, 6-month or 1-year"
	}
	if !sub.Status.Valid() {
		details["subscription.status"] = "must be active, expired or cancelled"
	}
	if sub.EndDate.Before(sub.StartDate) {
		details["subscription.endDate"] = "must not be before startDate"
	}
	if u.TotalSpent < 0 {
		details["totalSpent"] = "must not be negative"
	}

	carIDs := make(map[domain.CarID]bool, len(u.Cars))
	for i, c := range u.Cars {
		if c.UserID != u.ID {
			details[fmt.Sprintf("cars[%d].userId", i)] = "must match the owning user"
		}
		if c.ID == "" || carIDs[c.ID] {
			details[fmt.Sprintf("cars[%d].id", i)] = "must be present and unique"
		}
		carIDs[c.ID] = true
	}
	apptIDs := make(map[domain.AppointmentID]bool, len(u.Appointments))
	for i, a := range u.Appointments {
		if a.UserID != u.ID {
			details[fmt.Sprintf("appointments[%d].userId", i)] = "must match the owning user"
		}
		if a.ID == "" || apptIDs[a.ID] {
			details[fmt.Sprintf("appointments[%d].id", i)] = "must be present and unique"
		}
		apptIDs[a.ID] = true
		if !a.Status.Valid() {
			details[fmt.Sprintf("appointments[%d].status", i)] = "must be scheduled, completed or cancelled"
		}
		if !a.Service.Valid() {
			details[fmt.Sprintf("appointments[%d].service", i)] = "must be basic, premium or luxury"
		}
		if a.Status == domain.AppointmentScheduled && !carIDs[a.CarID] {
			details[fmt.Sprintf("appointments[%d].carId", i)] = "must reference one of the user's cars"
		}
	}
	fbIDs := make(map[domain.FeedbackID]bool, len(u.Feedback))
	for i, f := range u.Feedback {
		if f.UserID != u.ID {
			details[fmt.Sprintf("feedback[%d].userId", i)] = "must match the owning user"
		}
		if f.ID == "" || fbIDs[f.ID] {
			details[fmt.Sprintf("feedback[%d].id", i)] = "must be present and unique"
		}
		fbIDs[f.ID] = true
		if f.Rating < 1 || f.Rating > 5 {
			details[fmt.Sprintf("feedback[%d].rating", i)] = "must be between 1 and 5"
		}
	}

	if len(details) > 0 {
		return apperr.Validation("invalid user", details)
	}
	return nil
}

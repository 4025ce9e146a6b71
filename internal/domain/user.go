package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierLuxury  Tier = "luxury"
)

// Tiers lists every tier in catalog order.
var Tiers = []Tier{TierBasic, TierPremium, TierLuxury}

func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierPremium, TierLuxury:
		return true
	}
	return false
}

type Duration string

const (
	DurationOneMonth Duration = "1-month"
	DurationSixMonth Duration = "6-month"
	DurationOneYear  Duration = "1-year"
)

// Durations lists every subscription duration, shortest first.
var Durations = []Duration{DurationOneMonth, DurationSixMonth, DurationOneYear}

func (d Duration) Valid() bool {
	switch d {
	case DurationOneMonth, DurationSixMonth, DurationOneYear:
		return true
	}
	return false
}

// EndDate returns the calendar end of a subscription of this duration starting at start.
func (d Duration) EndDate(start time.Time) time.Time {
	switch d {
	case DurationSixMonth:
		return start.AddDate(0, 6, 0)
	case DurationOneYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	}
	return false
}

// Subscription describes a user's current plan.
type Subscription struct {
	Tier      Tier
	Duration  Duration
	StartDate time.Time // date-only
	EndDate   time.Time // date-only
	Status    SubscriptionStatus
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an appointment may move from s to next.
// Only scheduled appointments change state, and never back to scheduled.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return s == AppointmentScheduled && (next == AppointmentCompleted || next == AppointmentCancelled)
}

type Car struct {
	ID           CarID
	UserID       UserID
	Make         string
	Model        string
	Year         int
	Color        string
	LicensePlate string
	AddedDate    time.Time // date-only
}

// DisplayModel is the "make model" label used for popularity grouping.
func (c Car) DisplayModel() string {
	return c.Make + " " + c.Model
}

type Appointment struct {
	ID       AppointmentID
	UserID   UserID
	CarID    CarID
	Date     time.Time // date-only
	Time     string    // catalog time slot, e.g. "10:00 AM"
	Service  Tier
	Status   AppointmentStatus
	WashType string
}

type Feedback struct {
	ID          FeedbackID
	UserID      UserID
	Rating      int
	Comment     string
	Date        time.Time // date-only
	ServiceType string
}

// User is the aggregate root. It exclusively owns its cars, appointments and feedback.
type User struct {
	ID       UserID
	Name     string
	Email    string
	Phone    string
	Role     Role
	JoinDate time.Time // date-only

	Subscription Subscription
	TotalSpent   float64

	Cars         []Car
	Appointments []Appointment
	Feedback     []Feedback
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// FindCar returns the owned car with the given id.
func (u User) FindCar(id CarID) (Car, bool) {
	for _, c := range u.Cars {
		if c.ID == id {
			return c, true
		}
	}
	return Car{}, false
}

// FindAppointment returns the index of the appointment with the given id, or -1.
func (u User) FindAppointment(id AppointmentID) int {
	for i, a := range u.Appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// NextScheduled returns the first scheduled appointment in collection order.
func (u User) NextScheduled() (Appointment, bool) {
	for _, a := range u.Appointments {
		if a.Status == AppointmentScheduled {
			return a, true
		}
	}
	return Appointment{}, false
}

// Clone returns a deep copy so callers can mutate collections without aliasing stored state.
func (u User) Clone() User {
	out := u
	out.Cars = append([]Car(nil), u.Cars...)
	out.Appointments = append([]Appointment(nil), u.Appointments...)
	out.Feedback = append([]Feedback(nil), u.Feedback...)
	return out
}

// NewAdminUser synthesizes the administrator profile used for admin sessions.
func NewAdminUser(email string) User {
	return User{
		ID:       AdminUserID,
		Name:     "Admin User",
		Email:    email,
		Phone:    "+1 (555) 000-0000",
		Role:     RoleAdmin,
		JoinDate: MustDate("2024-01-01"),
		Subscription: Subscription{
			Tier:      TierLuxury,
			Duration:  DurationOneYear,
			StartDate: MustDate("2024-01-01"),
			EndDate:   MustDate("2025-01-01"),
			Status:    SubscriptionActive,
		},
		Cars:         []Car{},
		Appointments: []Appointment{},
		Feedback:     []Feedback{},
	}
}

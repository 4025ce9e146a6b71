package customer

import (
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type UpdateProfileInput struct {
	Name  Optional[string] // cannot be null
	Email Optional[string] // cannot be null
	Phone Optional[string] // null clears
}

type CarInput struct {
	Make         string
	Model        string
	Year         int
	Color        string
	LicensePlate string
}

type BookingInput struct {
	CarID    domain.CarID
	Date     time.Time
	Time     string
	Service  domain.Tier
	WashType string
}

type FeedbackInput struct {
	Rating      int
	Comment     string
	ServiceType string
}

type Dashboard struct {
	User          domain.User
	Plan          domain.Plan
	NextWash      *domain.Appointment
	UpcomingCount int
	CarCount      int
	FeedbackCount int
	// DaysRemaining counts whole days until the subscription ends; negative once it has lapsed.
	DaysRemaining int
	// RenewalDue is set during the final week of the subscription.
	RenewalDue bool
}

type Appointments struct {
	Upcoming []domain.Appointment
	Past     []domain.Appointment
}

package admin

import (
	"github.com/aquaclean/carwash-api/internal/domain"
)

// UserFilter narrows the user list. Empty or "all" fields match everything.
type UserFilter struct {
	Search string // name or email substring
	Status string
	Tier   string
}

type CarFilter struct {
	Search string // make, model, plate or owner name substring
	Make   string
}

type AppointmentFilter struct {
	Search  string // owner name, car make or model substring
	Status  string
	Service string
}

type CarRow struct {
	Car        domain.Car
	OwnerName  string
	OwnerEmail string
	OwnerTier  domain.Tier
}

type MakeCount struct {
	Make  string
	Count int
}

type AppointmentRow struct {
	Appointment domain.Appointment
	OwnerName   string
	OwnerEmail  string
	// Car is nil when the appointment references a car the owner no longer has.
	Car *domain.Car
}

// StatusCounts covers every appointment regardless of the filter.
type StatusCounts struct {
	Total     int
	Scheduled int
	Completed int
	Cancelled int
}

type AppointmentList struct {
	Rows   []AppointmentRow
	Counts StatusCounts
}

type NotificationStats struct {
	Total       int
	Unread      int
	Reminders   int
	Promotions  int
	ActiveUsers int
}

type NotificationList struct {
	Notifications []domain.Notification
	Stats         NotificationStats
}

type Recipients string

const (
	RecipientsAll      Recipients = "all"
	RecipientsSpecific Recipients = "specific"
)

type SendNotificationInput struct {
	Title      string
	Message    string
	Type       domain.NotificationType
	Recipients Recipients
	// UserID is required when Recipients is "specific".
	UserID domain.UserID
}

type Business struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Settings is the read-only system configuration shown to administrators.
type Settings struct {
	Business              Business
	Plans                 []domain.Plan
	SessionTimeoutMinutes int
	AllowUserRegistration bool
}

package domain

// UserID is an internal identifier for a user record.
type UserID string

// AdminUserID is the id of the synthesized administrator account. It is never persisted.
const AdminUserID UserID = "admin"

// CarID identifies a car within its owner's collection.
type CarID string

// AppointmentID identifies an appointment within its owner's collection.
type AppointmentID string

// FeedbackID identifies a feedback entry.
type FeedbackID string

// NotificationID identifies a notification.
type NotificationID string

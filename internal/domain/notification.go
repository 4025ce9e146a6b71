package domain

import "time"

type NotificationType string

const (
	NotificationReminder  NotificationType = "reminder"
	NotificationPromotion NotificationType = "promotion"
	NotificationSystem    NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationReminder, NotificationPromotion, NotificationSystem:
		return true
	}
	return false
}

type Notification struct {
	ID NotificationID
	// UserID targets a single user; nil means broadcast.
	UserID  *UserID
	Title   string
	Message string
	Type    NotificationType
	Date    time.Time // date-only
	Read    bool
}

// VisibleTo reports whether the notification is addressed to id (directly or by broadcast).
func (n Notification) VisibleTo(id UserID) bool {
	return n.UserID == nil || *n.UserID == id
}

package notificationrepo

import (
	"context"
	"errors"

	"github.com/aquaclean/carwash-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("notification not found")
	ErrAlreadyExists = errors.New("notification already exists")
)

// Repository stores notifications.
//
// List returns notifications newest first (by Date, then most recently created).
type Repository interface {
	Create(ctx context.Context, n domain.Notification) error
	GetByID(ctx context.Context, id domain.NotificationID) (domain.Notification, error)
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id domain.NotificationID) error
}

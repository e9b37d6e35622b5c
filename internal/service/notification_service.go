package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
)

const defaultNotificationLimit = 50

// notificationFeed is the slice of the notification store the feed reader needs.
type notificationFeed interface {
	List(ctx context.Context, limit int) ([]model.Notification, error)
}

// NotificationService serves the public in-app notification feed. Entries
// are written by other services when resources land or admins broadcast.
type NotificationService struct {
	store notificationFeed
	log   zerolog.Logger
}

func NewNotificationService(store notificationFeed, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		store: store,
		log:   log.With().Str("component", "notification_service").Logger(),
	}
}

func (s *NotificationService) List(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	return s.store.List(ctx, limit)
}

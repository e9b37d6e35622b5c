package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// auditStore is the slice of the activity log store the service needs.
type auditStore interface {
	Append(ctx context.Context, l *model.ActivityLog) error
	List(ctx context.Context, limit int) ([]model.ActivityLog, error)
	Clear(ctx context.Context) (int64, error)
}

// auditRecorder is what write-path services use to leave an audit trail.
// Recording never fails the calling operation.
type auditRecorder interface {
	Record(ctx context.Context, actorID int, actorEmail, action, details string)
}

// ActivityService maintains the append-only audit trail.
type ActivityService struct {
	store auditStore
	log   zerolog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(store auditStore, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		store: store,
		log:   log.With().Str("component", "activity_service").Logger(),
	}
}

// Record appends an audit entry. Failures are logged and swallowed so a
// broken audit store never blocks the operation being audited.
func (s *ActivityService) Record(ctx context.Context, actorID int, actorEmail, action, details string) {
	entry := &model.ActivityLog{
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		Details:    details,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

// List returns the newest audit entries.
func (s *ActivityService) List(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.List(ctx, limit)
}

// Clear wipes the audit trail and records who did it.
func (s *ActivityService) Clear(ctx context.Context, actorID int, actorEmail string) (int64, error) {
	removed, err := s.store.Clear(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to clear activity log")
		return removed, err
	}
	s.log.Info().Int64("removed", removed).Str("actor", actorEmail).Msg("activity log cleared")
	s.Record(ctx, actorID, actorEmail, "activity.clear", "cleared activity log")
	return removed, nil
}

package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/service"
)

// reapInterval is how often expired presence leases are swept. Counting
// already excludes expired members, so the sweep only reclaims memory.
const reapInterval = 30 * time.Second

// PresenceWorker periodically removes expired presence leases.
type PresenceWorker struct {
	presenceService *service.PresenceService
	log             zerolog.Logger
}

// NewPresenceWorker creates a new PresenceWorker.
func NewPresenceWorker(presenceService *service.PresenceService, log zerolog.Logger) *PresenceWorker {
	return &PresenceWorker{
		presenceService: presenceService,
		log:             log.With().Str("component", "presence_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *PresenceWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			removed, err := w.presenceService.Reap(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("Reap error")
				continue
			}
			if removed > 0 {
				w.log.Debug().Int64("count", removed).Msg("Reaped expired sessions")
			}
		}
	}
}

package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
)

// PresenceService tracks live sessions as leases in a Redis sorted set:
// member = session id, score = lease expiry. Clients extend their lease by
// heartbeating; the server reaps expired leases, so a vanished client counts
// as offline after one TTL with no cleanup of its own.
type PresenceService struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger

	now func() time.Time
}

// NewPresenceService creates a new PresenceService.
func NewPresenceService(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *PresenceService {
	return &PresenceService{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "presence_service").Logger(),
		now: time.Now,
	}
}

// Heartbeat extends (or creates) a session's lease.
func (s *PresenceService) Heartbeat(ctx context.Context, sessionID string) error {
	expiry := s.now().Add(s.ttl).Unix()
	err := s.rdb.ZAdd(ctx, config.CacheKey.PresenceSessions(), redis.Z{
		Score:  float64(expiry),
		Member: sessionID,
	}).Err()
	if err != nil {
		return err
	}
	s.publishChange(ctx)
	return nil
}

// Disconnect drops a session's lease immediately. Calling it is a courtesy;
// an unreachable client simply expires instead.
func (s *PresenceService) Disconnect(ctx context.Context, sessionID string) error {
	if err := s.rdb.ZRem(ctx, config.CacheKey.PresenceSessions(), sessionID).Err(); err != nil {
		return err
	}
	s.publishChange(ctx)
	return nil
}

// Count returns the number of sessions whose lease has not expired.
func (s *PresenceService) Count(ctx context.Context) (int, error) {
	min := strconv.FormatInt(s.now().Unix(), 10)
	n, err := s.rdb.ZCount(ctx, config.CacheKey.PresenceSessions(), "("+min, "+inf").Result()
	return int(n), err
}

// Reap removes expired leases and returns how many were dropped. Run
// periodically by the presence worker; Count is already expiry-aware, so
// reaping only keeps the set from growing.
func (s *PresenceService) Reap(ctx context.Context) (int64, error) {
	max := strconv.FormatInt(s.now().Unix(), 10)
	removed, err := s.rdb.ZRemRangeByScore(ctx, config.CacheKey.PresenceSessions(), "-inf", max).Result()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Debug().Int64("removed", removed).Msg("reaped expired presence leases")
		s.publishChange(ctx)
	}
	return removed, nil
}

// publishChange nudges presence subscribers to refetch the online count.
// Best-effort; subscribers also refresh on a timer.
func (s *PresenceService) publishChange(ctx context.Context) {
	if err := s.rdb.Publish(ctx, config.CacheKey.LiveChannel("presence"), "changed").Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish presence change")
	}
}

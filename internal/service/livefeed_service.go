package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
)

// changeNotifier is what write-path services use to wake live subscribers.
// Notification is fire-and-forget; a failed publish only delays listeners
// until their next refresh tick.
type changeNotifier interface {
	Publish(ctx context.Context, collection string)
	PublishConversation(ctx context.Context, userID int)
}

// ChangeEvent is the payload fanned out on a collection's live channel.
type ChangeEvent struct {
	Collection string `json:"collection"`
	At         int64  `json:"at"`
}

// LiveFeedService fans out change notifications over Redis Pub/Sub so every
// server instance can wake its own WebSocket subscribers.
type LiveFeedService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewLiveFeedService creates a new LiveFeedService.
func NewLiveFeedService(rdb *redis.Client, log zerolog.Logger) *LiveFeedService {
	return &LiveFeedService{
		rdb: rdb,
		log: log.With().Str("component", "livefeed_service").Logger(),
	}
}

// Publish announces that a collection changed.
func (s *LiveFeedService) Publish(ctx context.Context, collection string) {
	payload, _ := json.Marshal(ChangeEvent{Collection: collection, At: time.Now().UnixMilli()})
	if err := s.rdb.Publish(ctx, config.CacheKey.LiveChannel(collection), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("collection", collection).Msg("failed to publish change event")
	}
}

// PublishConversation announces that one user's thread changed. It also
// nudges the shared inbox channel, since the admin inbox mirrors every
// thread's preview.
func (s *LiveFeedService) PublishConversation(ctx context.Context, userID int) {
	payload, _ := json.Marshal(ChangeEvent{Collection: "conversation:" + strconv.Itoa(userID), At: time.Now().UnixMilli()})
	if err := s.rdb.Publish(ctx, config.CacheKey.ConversationChannel(userID), payload).Err(); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("failed to publish conversation event")
	}
	s.Publish(ctx, "conversations")
}

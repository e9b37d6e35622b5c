package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// pushTokenStore is the slice of the token store the service needs.
type pushTokenStore interface {
	Register(ctx context.Context, t *model.PushToken) error
	ListAll(ctx context.Context) ([]model.PushToken, error)
	Remove(ctx context.Context, tokens []string) error
}

// PushJob is the queue payload handed to the dispatch worker.
type PushJob struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
}

// PushService registers delivery tokens and queues dispatch jobs. Delivery
// itself happens in the push worker so a slow gateway never blocks the
// request path.
type PushService struct {
	rdb    *redis.Client
	tokens pushTokenStore
	audit  auditRecorder
	log    zerolog.Logger
}

// NewPushService creates a new PushService.
func NewPushService(rdb *redis.Client, tokens pushTokenStore, audit auditRecorder, log zerolog.Logger) *PushService {
	return &PushService{
		rdb:    rdb,
		tokens: tokens,
		audit:  audit,
		log:    log.With().Str("component", "push_service").Logger(),
	}
}

// RegisterToken stores a browser delivery token for a principal.
func (s *PushService) RegisterToken(ctx context.Context, principalID int, token string) error {
	t := &model.PushToken{Token: token, PrincipalID: principalID}
	if err := s.tokens.Register(ctx, t); err != nil {
		s.log.Error().Err(err).Int("principal_id", principalID).Msg("failed to register push token")
		return err
	}
	return nil
}

// Enqueue pushes a dispatch job onto the worker queue.
func (s *PushService) Enqueue(ctx context.Context, actor *Claims, req *model.SendPushRequest) error {
	job := PushJob{Title: req.Title, Body: req.Body, Link: req.Link}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.rdb.LPush(ctx, config.WorkerKey.PushDispatchQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Msg("failed to enqueue push job")
		return err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "push.send", fmt.Sprintf("queued push %q", req.Title))
	return nil
}

// Tokens returns every registered delivery token. Used by the worker.
func (s *PushService) Tokens(ctx context.Context) ([]model.PushToken, error) {
	return s.tokens.ListAll(ctx)
}

// DropTokens removes tokens the gateway reported as dead.
func (s *PushService) DropTokens(ctx context.Context, dead []string) {
	if len(dead) == 0 {
		return
	}
	if err := s.tokens.Remove(ctx, dead); err != nil {
		s.log.Warn().Err(err).Int("count", len(dead)).Msg("failed to drop dead push tokens")
		return
	}
	s.log.Info().Int("count", len(dead)).Msg("dropped dead push tokens")
}

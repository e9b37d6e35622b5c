package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/service"
)

// PushWorker consumes the push dispatch queue and delivers each job to the
// external push gateway, fanning out to every registered delivery token.
type PushWorker struct {
	cfg         *config.Config
	rdb         *redis.Client
	pushService *service.PushService
	client      *http.Client
	log         zerolog.Logger
}

// NewPushWorker creates a new PushWorker.
func NewPushWorker(cfg *config.Config, rdb *redis.Client, pushService *service.PushService, log zerolog.Logger) *PushWorker {
	return &PushWorker{
		cfg:         cfg,
		rdb:         rdb,
		pushService: pushService,
		client:      &http.Client{Timeout: 15 * time.Second},
		log:         log.With().Str("component", "push_worker").Logger(),
	}
}

// gatewayRequest is the payload posted to the push gateway.
type gatewayRequest struct {
	Tokens []string `json:"tokens"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Link   string   `json:"link,omitempty"`
}

// gatewayResponse reports tokens the gateway rejected as expired or invalid.
type gatewayResponse struct {
	DeadTokens []string `json:"dead_tokens"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *PushWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *PushWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PushDispatchQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	if err := w.dispatch(ctx, []byte(result[1])); err != nil {
		w.log.Error().Err(err).Msg("Dispatch error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.PushDispatchQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *PushWorker) dispatch(ctx context.Context, raw []byte) error {
	var job service.PushJob
	if err := json.Unmarshal(raw, &job); err != nil {
		// A malformed job can never succeed; log and drop it.
		w.log.Error().Err(err).Msg("Unmarshal error, dropping job")
		return nil
	}

	if w.cfg.PushGatewayURL == "" {
		w.log.Warn().Str("title", job.Title).Msg("Push gateway not configured, dropping job")
		return nil
	}

	tokens, err := w.pushService.Tokens(ctx)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		w.log.Info().Str("title", job.Title).Msg("No registered tokens, nothing to deliver")
		return nil
	}

	tokenStrs := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrs = append(tokenStrs, t.Token)
	}

	payload, err := json.Marshal(gatewayRequest{
		Tokens: tokenStrs,
		Title:  job.Title,
		Body:   job.Body,
		Link:   job.Link,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.PushGatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.PushGatewayKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.cfg.PushGatewayKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err == nil {
		w.pushService.DropTokens(ctx, gw.DeadTokens)
	}

	w.log.Info().
		Str("title", job.Title).
		Int("recipients", len(tokenStrs)).
		Msg("Push delivered")
	return nil
}

// drain delivers all remaining jobs before shutdown.
func (w *PushWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PushDispatchQueue).Result()
		if err != nil {
			break
		}

		if err := w.dispatch(ctx, []byte(result)); err != nil {
			w.log.Error().Err(err).Msg("Drain dispatch error")
			w.rdb.RPush(ctx, config.WorkerKey.PushDispatchQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining jobs")
	}
}

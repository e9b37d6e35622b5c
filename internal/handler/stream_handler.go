package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/service"
	ws "github.com/studyhub/studyhub-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

var (
	errUnknownTarget   = errors.New("unknown target")
	errTargetForbidden = errors.New("target not allowed for this token")
)

// snapshotRefreshInterval re-sends subscribed snapshots even without a change
// event, so a missed pub/sub message never strands a client on stale state.
const snapshotRefreshInterval = 60 * time.Second

// StreamHandler serves the live view WebSocket. Clients subscribe to
// collections and receive a full snapshot on every change; there are no
// incremental patches.
type StreamHandler struct {
	rdb                 *redis.Client
	catalogService      *service.CatalogService
	resourceService     *service.ResourceService
	notificationService *service.NotificationService
	settingService      *service.SettingService
	conversationService *service.ConversationService
	presenceService     *service.PresenceService
	log                 zerolog.Logger
	upgrader            websocket.Upgrader
}

func NewStreamHandler(
	rdb *redis.Client,
	catalogService *service.CatalogService,
	resourceService *service.ResourceService,
	notificationService *service.NotificationService,
	settingService *service.SettingService,
	conversationService *service.ConversationService,
	presenceService *service.PresenceService,
	log zerolog.Logger,
	allowedOrigins []string,
) *StreamHandler {
	return &StreamHandler{
		rdb:                 rdb,
		catalogService:      catalogService,
		resourceService:     resourceService,
		notificationService: notificationService,
		settingService:      settingService,
		conversationService: conversationService,
		presenceService:     presenceService,
		log:                 log.With().Str("component", "stream_handler").Logger(),
		upgrader:            buildUpgrader(allowedOrigins),
	}
}

// Live godoc
// WS /ws/v1/live
func (h *StreamHandler) Live(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	sessionID := uuid.NewString()
	connCtx, cancelAll := context.WithCancel(context.Background())
	defer cancelAll()

	wsLog := h.log.With().
		Str("session_id", sessionID).
		Str("email", claims.Email).
		Logger()

	if err := h.presenceService.Heartbeat(connCtx, sessionID); err != nil {
		wsLog.Warn().Err(err).Msg("Initial presence heartbeat failed")
	}
	defer func() {
		if err := h.presenceService.Disconnect(context.Background(), sessionID); err != nil {
			wsLog.Warn().Err(err).Msg("Presence disconnect failed")
		}
	}()

	wsLog.Info().Msg("Client connected")

	// Only the read loop touches this map, so no lock is needed.
	subscriptions := make(map[string]context.CancelFunc)
	defer func() {
		for _, cancel := range subscriptions {
			cancel()
		}
	}()

	for {
		var msg ws.SubscribeRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionSubscribe:
			h.handleSubscribe(connCtx, conn, wsLog, claims, subscriptions, msg.Target)
		case ws.ActionUnsubscribe:
			if cancel, ok := subscriptions[msg.Target]; ok {
				cancel()
				delete(subscriptions, msg.Target)
			}
		case ws.ActionPing:
			h.handlePing(connCtx, conn, wsLog, sessionID)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

func (h *StreamHandler) handleSubscribe(connCtx context.Context, conn *ws.Conn, wsLog zerolog.Logger, claims *service.Claims, subscriptions map[string]context.CancelFunc, target string) {
	if _, ok := subscriptions[target]; ok {
		conn.WriteTyped(ws.SubscribedResponse{Event: ws.EventSubscribed, Target: target})
		return
	}

	channel, err := h.authorizeTarget(claims, target)
	if err != nil {
		conn.WriteError(err.Error())
		return
	}

	conn.WriteTyped(ws.SubscribedResponse{Event: ws.EventSubscribed, Target: target})
	h.sendSnapshot(connCtx, conn, wsLog, claims, target)

	subCtx, cancel := context.WithCancel(connCtx)
	subscriptions[target] = cancel

	go h.streamTarget(subCtx, conn, wsLog, claims, target, channel)
}

// streamTarget re-sends the target snapshot whenever a change event arrives
// on its pub/sub channel, plus periodically as a safety net.
func (h *StreamHandler) streamTarget(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, claims *service.Claims, target, channel string) {
	pubsub := h.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	ticker := time.NewTicker(snapshotRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			h.sendSnapshot(ctx, conn, wsLog, claims, target)
		case <-ticker.C:
			h.sendSnapshot(ctx, conn, wsLog, claims, target)
		}
	}
}

func (h *StreamHandler) sendSnapshot(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, claims *service.Claims, target string) {
	data, err := h.snapshot(ctx, claims, target)
	if err != nil {
		wsLog.Warn().Err(err).Str("target", target).Msg("Snapshot build failed")
		conn.WriteError("snapshot failed for " + target)
		return
	}
	conn.WriteTyped(ws.SnapshotResponse{Event: ws.EventSnapshot, Target: target, Data: data})
}

func (h *StreamHandler) handlePing(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, sessionID string) {
	if err := h.presenceService.Heartbeat(ctx, sessionID); err != nil {
		wsLog.Warn().Err(err).Msg("Presence heartbeat failed")
	}
	online, err := h.presenceService.Count(ctx)
	if err != nil {
		online = 0
	}
	conn.WriteTyped(ws.PongResponse{Event: ws.EventPong, Online: online})
}

// authorizeTarget validates the target name against the caller's claims and
// returns the pub/sub channel carrying its change events.
func (h *StreamHandler) authorizeTarget(claims *service.Claims, target string) (string, error) {
	switch target {
	case "subjects", "resources", "notifications", "settings", "presence":
		return config.CacheKey.LiveChannel(target), nil
	case "conversations":
		if claims.TokenType != service.TokenTypeAdmin {
			return "", errTargetForbidden
		}
		return config.CacheKey.LiveChannel(target), nil
	}

	if userIDStr, ok := strings.CutPrefix(target, "conversation:"); ok {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			return "", errUnknownTarget
		}
		if claims.TokenType != service.TokenTypeAdmin && claims.UserID != userID {
			return "", errTargetForbidden
		}
		return config.CacheKey.ConversationChannel(userID), nil
	}

	return "", errUnknownTarget
}

func (h *StreamHandler) snapshot(ctx context.Context, claims *service.Claims, target string) (interface{}, error) {
	switch target {
	case "subjects":
		return h.catalogService.List(ctx)
	case "resources":
		return h.resourceService.ListAll(ctx)
	case "notifications":
		return h.notificationService.List(ctx, 0)
	case "settings":
		return h.settingService.Get(ctx), nil
	case "presence":
		online, err := h.presenceService.Count(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{"online": online}, nil
	case "conversations":
		return h.conversationService.ListInbox(ctx)
	}

	if userIDStr, ok := strings.CutPrefix(target, "conversation:"); ok {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			return nil, errUnknownTarget
		}
		// Handing the thread to the reader is the delivery moment for the
		// counterparty's pending messages.
		if err := h.conversationService.MarkDelivered(ctx, claims, userID); err != nil {
			h.log.Warn().Err(err).Int("user_id", userID).Msg("mark delivered failed")
		}
		return h.conversationService.Thread(ctx, claims, userID)
	}

	return nil, errUnknownTarget
}

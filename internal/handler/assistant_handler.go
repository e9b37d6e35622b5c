package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/assistant"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
	"github.com/studyhub/studyhub-backend/internal/validator"
)

// AssistantHandler routes chatbot questions to either the upstream bridge
// or the deterministic offline responder, depending on the portal setting.
type AssistantHandler struct {
	settingService *service.SettingService
	bridge         assistant.Bridge
	offline        *assistant.OfflineResponder
	log            zerolog.Logger
}

func NewAssistantHandler(settingService *service.SettingService, bridge assistant.Bridge, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		settingService: settingService,
		bridge:         bridge,
		offline:        assistant.NewOfflineResponder(),
		log:            log.With().Str("component", "assistant_handler").Logger(),
	}
}

type chatRequest struct {
	Messages []assistant.ChatMessage `json:"messages" binding:"required,min=1,dive"`
}

// Chat godoc
// POST /api/v1/chatbot
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	settings := h.settingService.Get(c.Request.Context())
	last := req.Messages[len(req.Messages)-1]

	if settings.ChatbotMode == model.ChatbotModeOffline || h.bridge == nil {
		reply := h.offline.Answer(last.Content)
		response.Success(c, http.StatusOK, gin.H{
			"reply":  reply,
			"source": "offline",
		})
		return
	}

	reply, err := h.bridge.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", h.bridge.Name()).Msg("assistant upstream failed")
		switch {
		case errors.Is(err, assistant.ErrInvalidCredentials):
			response.Fail(c, http.StatusBadGateway, response.ErrAssistantAuth)
		case errors.Is(err, assistant.ErrRateLimited):
			response.Fail(c, http.StatusTooManyRequests, response.ErrAssistantRateLimit)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrAssistantUpstream)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"reply":  reply,
		"source": h.bridge.Name(),
	})
}

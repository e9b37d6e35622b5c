package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
	"github.com/studyhub/studyhub-backend/internal/validator"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
}

func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// ─── User side ──────────────────────────────────────────────────────

// MyThread godoc
// GET /api/v1/me/conversation
func (h *ConversationHandler) MyThread(c *gin.Context) {
	claims := middleware.GetClaims(c)
	messages, err := h.conversationService.Thread(c.Request.Context(), claims, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if messages == nil {
		messages = []model.Message{}
	}
	response.Success(c, http.StatusOK, gin.H{"messages": messages})
}

// SendMine godoc
// POST /api/v1/me/conversation/messages
func (h *ConversationHandler) SendMine(c *gin.Context) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	message, err := h.conversationService.SendAsUser(c.Request.Context(), middleware.GetClaims(c), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": message})
}

// MarkMineSeen godoc
// POST /api/v1/me/conversation/seen
func (h *ConversationHandler) MarkMineSeen(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.conversationService.MarkSeen(c.Request.Context(), claims, claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "thread marked seen"})
}

// ─── Admin side ─────────────────────────────────────────────────────

// Inbox godoc
// GET /api/v1/admin/conversations
func (h *ConversationHandler) Inbox(c *gin.Context) {
	conversations, err := h.conversationService.ListInbox(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if conversations == nil {
		conversations = []model.Conversation{}
	}
	response.Success(c, http.StatusOK, gin.H{"conversations": conversations})
}

// Thread godoc
// GET /api/v1/admin/conversations/:user_id/messages
func (h *ConversationHandler) Thread(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	messages, err := h.conversationService.Thread(c.Request.Context(), middleware.GetClaims(c), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if messages == nil {
		messages = []model.Message{}
	}
	response.Success(c, http.StatusOK, gin.H{"messages": messages})
}

// Send godoc
// POST /api/v1/admin/conversations/:user_id/messages
func (h *ConversationHandler) Send(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	message, err := h.conversationService.SendAsAdmin(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": message})
}

// MarkSeen godoc
// POST /api/v1/admin/conversations/:user_id/seen
func (h *ConversationHandler) MarkSeen(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.conversationService.MarkSeen(c.Request.Context(), middleware.GetClaims(c), userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "thread marked seen"})
}

// ─── Shared message operations ──────────────────────────────────────

// React godoc
// POST /api/v1/messages/:id/reactions
func (h *ConversationHandler) React(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReactRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	message, err := h.conversationService.React(c.Request.Context(), middleware.GetClaims(c), messageID, req.Emoji)
	if err != nil {
		h.failMessageOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": message})
}

// Delete godoc
// DELETE /api/v1/messages/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.conversationService.Delete(c.Request.Context(), middleware.GetClaims(c), messageID); err != nil {
		h.failMessageOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "message deleted"})
}

// AdvanceStatus godoc
// POST /api/v1/messages/:id/status
func (h *ConversationHandler) AdvanceStatus(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=delivered seen"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err = h.conversationService.AdvanceStatus(c.Request.Context(), middleware.GetClaims(c), messageID, model.MessageStatus(req.Status))
	if err != nil {
		h.failMessageOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "status updated"})
}

func (h *ConversationHandler) failMessageOp(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotThreadMember):
		response.Fail(c, http.StatusForbidden, response.ErrNotThreadMember)
	case errors.Is(err, service.ErrMessageDeleted):
		response.Fail(c, http.StatusConflict, response.ErrMessageDeleted)
	case errors.Is(err, service.ErrNotMessageAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

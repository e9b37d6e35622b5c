package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
	"github.com/studyhub/studyhub-backend/internal/validator"
)

type BroadcastHandler struct {
	broadcastService *service.BroadcastService
}

func NewBroadcastHandler(broadcastService *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcastService: broadcastService}
}

// SendEmail godoc
// POST /api/v1/admin/broadcast/email
func (h *BroadcastHandler) SendEmail(c *gin.Context) {
	var req model.BroadcastEmailRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sent, err := h.broadcastService.SendEmail(c.Request.Context(), middleware.GetClaims(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrBroadcastNotConfigured) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recipients": sent})
}

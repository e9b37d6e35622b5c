package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List godoc
// GET /api/v1/admin/activity
func (h *ActivityHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.activityService.List(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if logs == nil {
		logs = []model.ActivityLog{}
	}
	response.Success(c, http.StatusOK, gin.H{"activity": logs})
}

// Clear godoc
// DELETE /api/v1/admin/activity
func (h *ActivityHandler) Clear(c *gin.Context) {
	claims := middleware.GetClaims(c)
	removed, err := h.activityService.Clear(c.Request.Context(), claims.UserID, claims.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

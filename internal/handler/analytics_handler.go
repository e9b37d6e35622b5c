package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Dashboard godoc
// GET /api/v1/admin/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	summary, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dashboard": summary})
}

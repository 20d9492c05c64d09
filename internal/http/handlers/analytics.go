package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/trustlens-backend/internal/http/response"
	"github.com/yungbote/trustlens-backend/internal/services/analytics"
)

type AnalyticsHandler struct {
	analytics analytics.Service
}

func NewAnalyticsHandler(svc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

func (h *AnalyticsHandler) Report(c *gin.Context) {
	rep, err := h.analytics.Report(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, "analytics_failed", err)
		return
	}
	response.RespondOK(c, rep)
}

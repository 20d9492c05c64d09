package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/trustlens-backend/internal/http/response"
	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/trustlens-backend/internal/services/feedback"
)

type FeedbackHandler struct {
	feedback feedback.Service
}

func NewFeedbackHandler(svc feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{feedback: svc}
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req feedback.Feedback
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	token := ""
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		token = rd.TokenString
	}
	raw, err := h.feedback.Submit(c.Request.Context(), req, token)
	if err != nil {
		var reqErr *apiclient.RequestError
		var trErr *apiclient.TransportError
		switch {
		case errors.As(err, &reqErr):
			response.RespondError(c, http.StatusBadGateway, "feedback_rejected", reqErr)
		case errors.As(err, &trErr):
			response.RespondError(c, http.StatusBadGateway, "service_unreachable", errors.New("The feedback service is unreachable. Please try again later."))
		default:
			response.RespondAPIError(c, "feedback_failed", err)
		}
		return
	}
	if len(raw) == 0 {
		response.RespondOK(c, gin.H{"ok": true})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/http/response"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/trustlens-backend/internal/services/moderation"
)

type ModerationHandler struct {
	moderation moderation.Service
}

func NewModerationHandler(svc moderation.Service) *ModerationHandler {
	return &ModerationHandler{moderation: svc}
}

type moderationView struct {
	*domain.Item
	Band domain.Band `json:"band"`
}

func viewOf(it *domain.Item) moderationView {
	return moderationView{Item: it, Band: it.Band()}
}

func (h *ModerationHandler) List(c *gin.Context) {
	var status *domain.Status
	if raw := c.Query("status"); raw != "" {
		s, ok := domain.ParseStatus(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_status", errors.New("status must be one of pending, approved, rejected"))
			return
		}
		status = &s
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	items, err := h.moderation.List(c.Request.Context(), status, limit)
	if err != nil {
		response.RespondAPIError(c, "moderation_list_failed", err)
		return
	}
	out := make([]moderationView, 0, len(items))
	for _, it := range items {
		out = append(out, viewOf(it))
	}
	response.RespondOK(c, gin.H{"items": out})
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	h.decide(c, h.moderation.Approve)
}

func (h *ModerationHandler) Reject(c *gin.Context) {
	h.decide(c, h.moderation.Reject)
}

func (h *ModerationHandler) decide(c *gin.Context, fn func(ctx context.Context, id, reviewer uuid.UUID) (*domain.Item, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid moderation item id"))
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
		return
	}
	it, err := fn(c.Request.Context(), id, rd.UserID)
	if err != nil {
		response.RespondAPIError(c, "moderation_decision_failed", err)
		return
	}
	response.RespondOK(c, viewOf(it))
}

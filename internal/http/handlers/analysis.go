package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/http/response"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/trustlens-backend/internal/services"
	"github.com/yungbote/trustlens-backend/internal/services/history"
	"github.com/yungbote/trustlens-backend/internal/services/trust"
)

type AnalysisHandler struct {
	analyzer        trust.Analyzer
	recorder        history.Recorder
	authService     services.AuthService
	defaultMetadata review.Metadata
}

func NewAnalysisHandler(analyzer trust.Analyzer, recorder history.Recorder, authService services.AuthService, defaultMetadata review.Metadata) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:        analyzer,
		recorder:        recorder,
		authService:     authService,
		defaultMetadata: defaultMetadata,
	}
}

// Analyze runs one submission and answers with the stamped history item.
// The history write itself completes in the background.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var sub review.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sub = sub.Normalize()

	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	token := ""
	if rd != nil {
		token = rd.TokenString
	}
	sub.Metadata = h.metadataFor(c)

	out, err := h.analyzer.Analyze(ctx, sub, token)
	if err != nil {
		var te *trust.Error
		if errors.As(err, &te) {
			response.RespondError(c, te.HTTPStatus(), string(te.Kind), te)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, string(trust.KindUnexpected), errors.New(trust.MsgUnexpected))
		return
	}

	item := h.recorder.RecordAsync(rd.UserID, sub, out.Result, out.Prediction)
	response.RespondOK(c, item)
}

// metadataFor derives reviewer metadata from the caller's account, using defaults when it cannot be loaded.
func (h *AnalysisHandler) metadataFor(c *gin.Context) review.Metadata {
	if h.authService == nil {
		return h.defaultMetadata
	}
	u, err := h.authService.Me(c.Request.Context())
	if err != nil || u == nil {
		return h.defaultMetadata
	}
	return review.Metadata{Verified: u.Verified, AccountAgeDays: u.AccountAgeDays(time.Now())}
}

func (h *AnalysisHandler) History(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
		return
	}
	limit := history.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	items, err := h.recorder.List(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		response.RespondAPIError(c, "history_failed", err)
		return
	}
	if items == nil {
		items = []*review.HistoryItem{}
	}
	response.RespondOK(c, gin.H{"items": items})
}

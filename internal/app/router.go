package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/trustlens-backend/internal/http"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const sessionMaxAge = 7 * 24 * 60 * 60

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		SessionSecret:     cfg.SessionSecret,
		SessionSecure:     cfg.SessionSecure,
		SessionMaxAge:     sessionMaxAge,
		AuthHandler:       handlers.Auth,
		AuthMiddleware:    middleware.Auth,
		RateLimiter:       middleware.RateLimit,
		AnalysisHandler:   handlers.Analysis,
		FeedbackHandler:   handlers.Feedback,
		ModerationHandler: handlers.Moderation,
		AnalyticsHandler:  handlers.Analytics,
		HealthHandler:     handlers.Health,
		// A dedicated listener serves /metrics when METRICS_ADDR is set.
		ExposeMetrics: cfg.MetricsAddr == "",
	})
}

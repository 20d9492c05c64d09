package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/trustlens-backend/internal/domain/user"
	httpH "github.com/yungbote/trustlens-backend/internal/http/handlers"
	httpMW "github.com/yungbote/trustlens-backend/internal/http/middleware"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const sessionCookieName = "trustlens_session"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string

	CORSOrigins   []string
	SessionSecret string
	SessionSecure bool
	SessionMaxAge int

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	AnalysisHandler   *httpH.AnalysisHandler
	FeedbackHandler   *httpH.FeedbackHandler
	ModerationHandler *httpH.ModerationHandler
	AnalyticsHandler  *httpH.AnalyticsHandler

	HealthHandler *httpH.HealthHandler
	// ExposeMetrics serves /metrics on the API listener as well.
	ExposeMetrics bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	if cfg.SessionSecret != "" {
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(sessions.Options{
			MaxAge:   cfg.SessionMaxAge,
			Path:     "/",
			HttpOnly: true,
			Secure:   cfg.SessionSecure,
			SameSite: http.SameSiteLaxMode,
		})
		r.Use(sessions.Sessions(sessionCookieName, store))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.ExposeMetrics && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/token", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Analysis
		if cfg.AnalysisHandler != nil {
			analyze := []gin.HandlerFunc{}
			if cfg.RateLimiter != nil {
				analyze = append(analyze, cfg.RateLimiter.Middleware())
			}
			analyze = append(analyze, cfg.AnalysisHandler.Analyze)
			protected.POST("/analyze", analyze...)
			protected.GET("/history", cfg.AnalysisHandler.History)
		}

		// Feedback
		if cfg.FeedbackHandler != nil {
			protected.POST("/feedback", cfg.FeedbackHandler.Submit)
		}
	}

	admin := protected.Group("/admin")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireRole(user.RoleAdmin))
		}

		// Moderation
		if cfg.ModerationHandler != nil {
			admin.GET("/moderation", cfg.ModerationHandler.List)
			admin.POST("/moderation/:id/approve", cfg.ModerationHandler.Approve)
			admin.POST("/moderation/:id/reject", cfg.ModerationHandler.Reject)
		}

		// Analytics
		if cfg.AnalyticsHandler != nil {
			admin.GET("/analytics", cfg.AnalyticsHandler.Report)
		}
	}

	return r
}

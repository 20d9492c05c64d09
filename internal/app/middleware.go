package app

import (
	httpMW "github.com/yungbote/trustlens-backend/internal/http/middleware"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:      httpMW.NewAuthMiddleware(log, services.Auth),
		RateLimit: httpMW.NewRateLimiter(cfg.AnalyzeRatePerMin, cfg.AnalyzeBurst, metrics),
	}
}

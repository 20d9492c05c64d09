package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	httpH "github.com/yungbote/trustlens-backend/internal/http/handlers"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Analysis   *httpH.AnalysisHandler
	Feedback   *httpH.FeedbackHandler
	Moderation *httpH.ModerationHandler
	Analytics  *httpH.AnalyticsHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	defaults := review.Metadata{Verified: cfg.DefaultVerified, AccountAgeDays: cfg.DefaultAccountAgeDays}
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Auth:       httpH.NewAuthHandler(services.Auth),
		Analysis:   httpH.NewAnalysisHandler(services.Analyzer, services.Recorder, services.Auth, defaults),
		Feedback:   httpH.NewFeedbackHandler(services.Feedback),
		Moderation: httpH.NewModerationHandler(services.Moderation),
		Analytics:  httpH.NewAnalyticsHandler(services.Analytics),
	}
}

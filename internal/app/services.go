package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/services"
	"github.com/yungbote/trustlens-backend/internal/services/analytics"
	"github.com/yungbote/trustlens-backend/internal/services/feedback"
	"github.com/yungbote/trustlens-backend/internal/services/history"
	"github.com/yungbote/trustlens-backend/internal/services/moderation"
	"github.com/yungbote/trustlens-backend/internal/services/trust"
)

const (
	verifierCacheSize = 4096
	verifierCacheTTL  = 30 * time.Second
)

type Services struct {
	Auth       services.AuthService
	Analyzer   trust.Analyzer
	Recorder   history.Recorder
	Moderation moderation.Service
	Analytics  analytics.Service
	Feedback   feedback.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	signer := auth.NewSigner(cfg.JWTSecretKey, cfg.AccessTokenTTL)
	verifier := auth.NewVerifier(signer, repos.UserToken, verifierCacheSize, verifierCacheTTL)
	authService := services.NewAuthService(db, log, repos.User, repos.UserToken, signer, verifier)

	explainer := trust.NewTemplateExplainer()
	if clients.OpenAI != nil {
		e, err := trust.NewExplainer(log, clients.OpenAI)
		if err != nil {
			return Services{}, fmt.Errorf("init explainer: %w", err)
		}
		explainer = e
	}
	analyzer := trust.NewAnalyzer(log, trust.NewPredictor(clients.MLService), explainer, metrics)

	moderationService := moderation.NewService(db, log, repos.Moderation, clients.Bus)
	recorder := history.NewRecorder(db, log, repos.History, repos.User, moderationService, clients.Bus, metrics)

	return Services{
		Auth:       authService,
		Analyzer:   analyzer,
		Recorder:   recorder,
		Moderation: moderationService,
		Analytics:  analytics.NewService(log, repos.History),
		Feedback:   feedback.NewService(log, clients.MLService),
	}, nil
}

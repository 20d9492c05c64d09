package app

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/data/db"
	"github.com/yungbote/trustlens-backend/internal/http"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/envutil"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const (
	collectorInterval = 15 * time.Second
	limiterSweepEvery = time.Minute
	shutdownTimeout   = 15 * time.Second
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services

	middleware Middleware
	database   *db.Service
	otelStop   func(context.Context) error
	cancel     context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelStop := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(cfg.MetricsEnabled)

	database, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := database.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureIndexes(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, cfg, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset, metrics)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:        log,
		DB:         theDB,
		Router:     router,
		Cfg:        cfg,
		Metrics:    metrics,
		Clients:    clients,
		Repos:      reposet,
		Services:   serviceset,
		middleware: middleware,
		database:   database,
		otelStop:   otelStop,
	}, nil
}

// Start seeds bootstrap data and launches the background loops.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	if a.Cfg.AdminEmail != "" {
		if err := a.Services.Auth.EnsureAdmin(ctx, a.Cfg.AdminName, a.Cfg.AdminEmail, a.Cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	if a.Cfg.SeedModeration {
		n, err := a.Services.Moderation.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed moderation queue: %w", err)
		}
		a.Log.Info("Moderation queue seeded", "items", n)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, collectorInterval)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, collectorInterval)
	a.Metrics.StartModerationQueueCollector(ctx, a.Log, a.DB, collectorInterval)
	a.middleware.RateLimit.StartCleanup(ctx, limiterSweepEvery)
	go a.pruneTokens(ctx)
	return nil
}

func (a *App) pruneTokens(ctx context.Context) {
	interval := a.Cfg.TokenPruneInterval
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.Services.Auth.PruneExpiredTokens(ctx)
			if err != nil {
				a.Log.Warn("Token prune failed", "error", err)
				continue
			}
			if n > 0 {
				a.Log.Info("Expired tokens pruned", "count", n)
			}
		}
	}
}

// Run serves the API, and the metrics listener when configured, until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("API listening", "addr", a.Cfg.Address())
		return (&http.Server{Engine: a.Router}).Run(gctx, a.Cfg.Address())
	})

	if a.Metrics != nil && a.Cfg.MetricsAddr != "" {
		srv := a.Metrics.NewServer(a.Cfg.MetricsAddr)
		g.Go(func() error {
			a.Log.Info("Metrics listening", "addr", a.Cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Close drains pending history writes before releasing connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Recorder != nil {
		a.Services.Recorder.Wait()
	}
	a.Clients.Close()
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelStop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelStop(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

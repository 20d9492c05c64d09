package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/httpx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/platform/openai"
	"github.com/yungbote/trustlens-backend/internal/platform/redisbus"
)

type Clients struct {
	Bus       redisbus.Publisher
	Redis     *goredis.Client
	MLService *apiclient.Client
	// OpenAI is nil when no API key is configured.
	OpenAI openai.Client
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	bus := redisbus.NewNop(log)
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		b, client, err := redisbus.New(log, cfg.Redis, metrics)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		bus, rdb = b, client
	}

	// Prediction service. Each call supplies the caller's token.
	ml := apiclient.New(cfg.MLServiceURL, httpx.NewClient(cfg.MLServiceTimeout), nil, log)

	// Openai
	var ai openai.Client
	if cfg.OpenAI.APIKey != "" {
		c, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			_ = bus.Close()
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		ai = c
	} else {
		log.Warn("OPENAI_API_KEY not set, explanations use the built-in template")
	}

	return Clients{
		Bus:       bus,
		Redis:     rdb,
		MLService: ml,
		OpenAI:    ai,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}

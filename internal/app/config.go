package app

import (
	"strings"
	"time"

	"github.com/yungbote/trustlens-backend/internal/data/db"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/envutil"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/platform/openai"
	"github.com/yungbote/trustlens-backend/internal/platform/redisbus"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port           string
	LogMode        string
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	MLServiceURL     string
	MLServiceTimeout time.Duration

	DB     db.Config
	Redis  redisbus.Config
	OpenAI openai.Config

	SessionSecret string
	SessionSecure bool
	CORSOrigins   []string

	AnalyzeRatePerMin int
	AnalyzeBurst      int

	DefaultAccountAgeDays int
	DefaultVerified       bool

	MetricsEnabled bool
	MetricsAddr    string
	Otel           observability.OtelConfig

	SeedModeration bool
	AdminName      string
	AdminEmail     string
	AdminPassword  string

	TokenPruneInterval time.Duration
}

// LoadConfig reads TRUSTLENS_CONFIG_FILE first, then the environment. Set
// environment variables always win over the file.
func LoadConfig(log *logger.Logger) Config {
	if path := envutil.String("TRUSTLENS_CONFIG_FILE", ""); path != "" {
		n, err := envutil.LoadYAML(path)
		if err != nil {
			log.Warn("Config file ignored", "path", path, "error", err)
		} else {
			log.Info("Config file loaded", "path", path, "keys", n)
		}
	}

	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		LogMode:        envutil.String("LOG_MODE", "development"),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		MLServiceURL:     envutil.String("ML_SERVICE_URL", "http://localhost:5001"),
		MLServiceTimeout: envutil.Duration("ML_SERVICE_TIMEOUT", 30*time.Second),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "trustlens"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "trustlens.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: redisbus.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", "trustlens"),
		},
		OpenAI: openai.Config{
			APIKey:     envutil.String("OPENAI_API_KEY", ""),
			BaseURL:    envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:      envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:    envutil.Duration("OPENAI_TIMEOUT", 60*time.Second),
			MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 2),
		},

		SessionSecret: envutil.String("SESSION_SECRET", ""),
		SessionSecure: envutil.Bool("SESSION_SECURE", false),
		CORSOrigins:   envutil.List("CORS_ORIGINS", nil),

		AnalyzeRatePerMin: envutil.Int("ANALYZE_RATE_PER_MIN", 10),
		AnalyzeBurst:      envutil.Int("ANALYZE_BURST", 3),

		DefaultAccountAgeDays: envutil.Int("DEFAULT_ACCOUNT_AGE_DAYS", 30),
		DefaultVerified:       envutil.Bool("DEFAULT_VERIFIED", true),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090"),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "trustlens-api"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1.0),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},

		SeedModeration: envutil.Bool("SEED_MODERATION", false),
		AdminName:      envutil.String("ADMIN_NAME", "Admin User"),
		AdminEmail:     envutil.String("ADMIN_EMAIL", ""),
		AdminPassword:  envutil.String("ADMIN_PASSWORD", ""),

		TokenPruneInterval: envutil.Duration("TOKEN_PRUNE_INTERVAL", time.Hour),
	}

	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	if cfg.SessionSecret == "" {
		// Cookie sessions share the signing secret unless one is given.
		cfg.SessionSecret = cfg.JWTSecretKey
	}
	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)
	return cfg
}

func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

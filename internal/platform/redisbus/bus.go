package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const (
	TopicAnalysisCompleted = "analysis.completed"
	TopicModerationFlagged = "moderation.flagged"
	TopicModerationDecided = "moderation.decided"
	defaultChannel         = "trustlens"
	defaultPublishTimeout  = 3 * time.Second
)

// Event is the envelope written to the channel.
type Event struct {
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewEvent(topic string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return Event{Topic: topic, OccurredAt: time.Now().UTC(), Data: raw}, nil
}

type Publisher interface {
	Publish(ctx context.Context, topic string, data any) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type bus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	metrics *observability.Metrics
}

// New connects to Redis and pings it once.
func New(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Publisher, *goredis.Client, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = defaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return &bus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
		metrics: metrics,
	}, rdb, nil
}

func (b *bus) Publish(ctx context.Context, topic string, data any) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	ev, err := NewEvent(topic, data)
	if err != nil {
		b.metrics.IncEventPublished(topic, "error")
		return err
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		b.metrics.IncEventPublished(topic, "error")
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPublishTimeout)
		defer cancel()
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.metrics.IncEventPublished(topic, "error")
		return err
	}
	b.metrics.IncEventPublished(topic, "ok")
	return nil
}

func (b *bus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

type nopPublisher struct {
	log *logger.Logger
}

// NewNop returns a Publisher that only logs; used when Redis is not configured.
func NewNop(log *logger.Logger) Publisher {
	return &nopPublisher{log: log.With("service", "NopEventBus")}
}

func (n *nopPublisher) Publish(ctx context.Context, topic string, data any) error {
	n.log.Debug("event dropped, no bus configured", "topic", topic)
	return nil
}

func (n *nopPublisher) Close() error { return nil }

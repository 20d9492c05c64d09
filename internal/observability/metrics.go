package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const namespace = "trustlens"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	predictRequests *prometheus.CounterVec
	predictLatency  prometheus.Histogram
	analyses        *prometheus.CounterVec
	analysisStages  *prometheus.CounterVec
	trustScores     *prometheus.HistogramVec
	historyWrites   *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	moderationQueue *prometheus.GaugeVec
	dbStats         *prometheus.GaugeVec
	redisUp         prometheus.Gauge
	redisPing       prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once. With enabled=false it returns nil and every
// Observe call becomes a no-op.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// New builds metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		predictRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "prediction_requests_total",
			Help: "Calls to the prediction service by outcome.",
		}, []string{"outcome"}),
		predictLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "prediction_duration_seconds",
			Help:    "Prediction service latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "analyses_total",
			Help: "Completed analysis runs by terminal state and failure kind.",
		}, []string{"state", "kind"}),
		analysisStages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "analysis_state_transitions_total",
			Help: "Analysis state machine transitions by target state.",
		}, []string{"state"}),
		trustScores: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "trust_score",
			Help:    "Distribution of trust scores by predicted label.",
			Buckets: []float64{0.2, 0.4, 0.6, 0.8, 1},
		}, []string{"label"}),
		historyWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "history_writes_total",
			Help: "Background history writes by status.",
		}, []string{"status"}),
		rateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter by route.",
		}, []string{"route"}),
		eventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_published_total",
			Help: "Events published to the bus by topic/status.",
		}, []string{"topic", "status"}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "llm_requests_total",
			Help: "LLM requests by model/endpoint/status.",
		}, []string{"model", "endpoint", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "llm_request_duration_seconds",
			Help:    "LLM request latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model", "endpoint", "status"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "llm_tokens_total",
			Help: "LLM tokens by model/direction.",
		}, []string{"model", "direction"}),
		moderationQueue: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "moderation_queue_depth",
			Help: "Moderation items by status.",
		}, []string{"status"}),
		dbStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_pool",
			Help: "Database connection pool statistics.",
		}, []string{"stat"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_up",
			Help: "Redis reachability (1 = up).",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_ping_seconds",
			Help: "Last Redis ping latency in seconds.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewServer returns a dedicated metrics listener; callers own its lifecycle.
func (m *Metrics) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObservePrediction(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.predictRequests.WithLabelValues(outcome).Inc()
	if dur > 0 {
		m.predictLatency.Observe(dur.Seconds())
	}
}

func (m *Metrics) ObserveAnalysisState(state string) {
	if m == nil {
		return
	}
	m.analysisStages.WithLabelValues(state).Inc()
}

// ObserveAnalysis records a terminal state; kind is empty on success.
func (m *Metrics) ObserveAnalysis(state, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.analyses.WithLabelValues(state, kind).Inc()
}

func (m *Metrics) ObserveTrustScore(label string, score float64) {
	if m == nil {
		return
	}
	m.trustScores.WithLabelValues(label).Observe(score)
}

func (m *Metrics) IncHistoryWrite(status string) {
	if m == nil {
		return
	}
	m.historyWrites.WithLabelValues(status).Inc()
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

func (m *Metrics) IncEventPublished(topic, status string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(topic, status).Inc()
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = "unknown"
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "0"
	}
	m.llmRequests.WithLabelValues(model, endpoint, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, endpoint, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	go tick(ctx, interval, func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: db stats unavailable", "error", err)
			}
			return
		}
		stats := sqlDB.Stats()
		m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
		m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
		m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
		m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
		m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
	})
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	go tick(ctx, interval, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

// StartModerationQueueCollector samples moderation queue depth per status.
func (m *Metrics) StartModerationQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	statuses := []moderation.Status{moderation.StatusPending, moderation.StatusApproved, moderation.StatusRejected}
	go tick(ctx, interval, func() {
		var rows []struct {
			Status string
			Count  int64
		}
		if err := db.WithContext(ctx).
			Model(&moderation.Item{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&rows).Error; err != nil {
			if log != nil {
				log.Warn("metrics: moderation queue query failed", "error", err)
			}
			return
		}
		for _, s := range statuses {
			m.moderationQueue.WithLabelValues(string(s)).Set(0)
		}
		for _, row := range rows {
			m.moderationQueue.WithLabelValues(row.Status).Set(float64(row.Count))
		}
	})
}

func tick(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

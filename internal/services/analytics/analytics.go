package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	"github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const usageDays = 7

type Classification struct {
	Genuine int64 `json:"genuine"`
	Fake    int64 `json:"fake"`
}

type CredibilityBucket struct {
	Bucket string `json:"bucket"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
	Count  int64  `json:"count"`
}

type DailyUsage struct {
	Date     string `json:"date"`
	Analyses int64  `json:"analyses"`
}

type Report struct {
	Classification Classification      `json:"classification"`
	Credibility    []CredibilityBucket `json:"credibility"`
	Usage          []DailyUsage        `json:"usage"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}

var bucketBounds = [][2]int{{0, 19}, {20, 39}, {40, 59}, {60, 79}, {80, 100}}

type Service interface {
	Report(ctx context.Context) (*Report, error)
}

type service struct {
	log     *logger.Logger
	history repos.HistoryRepo
	now     func() time.Time
}

func NewService(log *logger.Logger, history repos.HistoryRepo) Service {
	return &service{log: log.With("service", "AnalyticsService"), history: history, now: time.Now}
}

func (s *service) Report(ctx context.Context) (*Report, error) {
	dbc := dbctx.Context{Ctx: ctx}
	now := s.now().UTC()

	counts, err := s.history.CountByLabel(dbc)
	if err != nil {
		return nil, fmt.Errorf("count labels: %w", err)
	}
	scores, err := s.history.ListTrustScores(dbc)
	if err != nil {
		return nil, fmt.Errorf("list trust scores: %w", err)
	}
	start := startOfDay(now).AddDate(0, 0, -(usageDays - 1))
	stamps, err := s.history.ListTimestampsSince(dbc, start)
	if err != nil {
		return nil, fmt.Errorf("list timestamps: %w", err)
	}

	rep := &Report{GeneratedAt: now}
	for _, c := range counts {
		switch c.Label {
		case review.LabelGenuine:
			rep.Classification.Genuine = c.Count
		case review.LabelFake:
			rep.Classification.Fake = c.Count
		}
	}
	rep.Credibility = Histogram(scores)
	rep.Usage = DailyCounts(stamps, start, usageDays)
	return rep, nil
}

// Histogram buckets trust scores by their 0-100 credibility.
func Histogram(scores []float64) []CredibilityBucket {
	out := make([]CredibilityBucket, len(bucketBounds))
	for i, b := range bucketBounds {
		out[i] = CredibilityBucket{Bucket: fmt.Sprintf("%d-%d", b[0], b[1]), Min: b[0], Max: b[1]}
	}
	for _, sc := range scores {
		c := moderation.Credibility(sc)
		for i, b := range bucketBounds {
			if c >= b[0] && c <= b[1] {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// DailyCounts returns one entry per UTC day starting at start, zero-filled.
func DailyCounts(stamps []time.Time, start time.Time, days int) []DailyUsage {
	start = startOfDay(start)
	out := make([]DailyUsage, days)
	for i := range out {
		out[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	for _, ts := range stamps {
		idx := int(startOfDay(ts.UTC()).Sub(start).Hours() / 24)
		if idx >= 0 && idx < days {
			out[idx].Analyses++
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package history

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	"github.com/yungbote/trustlens-backend/internal/data/repos/testutil"
	domainmod "github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/trustlens-backend/internal/services/moderation"
)

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (c *capturePublisher) Publish(ctx context.Context, topic string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func submission() review.Submission {
	return review.Submission{
		ReviewText:       "Wow! This is the best watch ever made. I love it so much.",
		ProductOrService: "GalaxyWatch 5",
		Platform:         review.PlatformOther,
		Language:         "en",
	}
}

func TestRecordAsyncPersistsAndFlags(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "owner@example.com")

	pub := &capturePublisher{}
	modRepo := repos.NewModerationRepo(db, log)
	modSvc := moderation.NewService(db, log, modRepo, pub)
	rec := NewRecorder(db, log, repos.NewHistoryRepo(db, log), repos.NewUserRepo(db, log), modSvc, pub, observability.New())

	pred := &review.Prediction{Label: review.LabelFake, TrustScore: 0.15, Explanation: map[string]any{"caps_ratio": 0.3}}
	res := review.AnalysisResult{TrustScore: 0.15, PredictedLabel: review.LabelFake, Explanation: "Our analysis suggests this review is likely fake because..."}
	item := rec.RecordAsync(owner.ID, submission(), res, pred)
	if item.ID.String() == "" || item.Timestamp.IsZero() {
		t.Fatalf("item not stamped: %+v", item)
	}
	rec.Wait()

	got, err := rec.List(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != item.ID {
		t.Fatalf("history: %+v", got)
	}
	if got[0].TrustScore != 0.15 || got[0].PredictedLabel != review.LabelFake {
		t.Fatalf("result not stored unmodified: %+v", got[0])
	}
	if len(got[0].Features) == 0 {
		t.Fatalf("features not stored")
	}

	pending := domainmod.StatusPending
	flagged, err := modRepo.List(dbctx.Context{Ctx: ctx}, &pending, 0)
	if err != nil || len(flagged) != 1 {
		t.Fatalf("flagged: %d err=%v", len(flagged), err)
	}
	if flagged[0].Reviewer != "owner@example.com" || flagged[0].Credibility != 15 {
		t.Fatalf("flagged item: %+v", flagged[0])
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.topics) != 2 {
		t.Fatalf("topics: %v", pub.topics)
	}
}

func TestRecordAsyncHighScoreNotFlagged(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "owner@example.com")

	modRepo := repos.NewModerationRepo(db, log)
	rec := NewRecorder(db, log, repos.NewHistoryRepo(db, log), nil, moderation.NewService(db, log, modRepo, &capturePublisher{}), nil, nil)

	res := review.AnalysisResult{TrustScore: 0.92, PredictedLabel: review.LabelGenuine, Explanation: "fine"}
	for i := 0; i < 3; i++ {
		rec.RecordAsync(owner.ID, submission(), res, nil)
	}
	rec.Wait()

	if n, _ := modRepo.Count(dbctx.Context{Ctx: ctx}); n != 0 {
		t.Fatalf("high score flagged: %d", n)
	}
	items, err := rec.List(ctx, owner.ID, 2)
	if err != nil || len(items) != 2 {
		t.Fatalf("List limit: %d err=%v", len(items), err)
	}
}

func TestRecordAsyncFailureIsSwallowed(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	sqlDB, _ := db.DB()
	rec := NewRecorder(db, log, repos.NewHistoryRepo(db, log), nil, nil, nil, nil)
	_ = sqlDB.Close()

	item := rec.RecordAsync(uuid.New(), submission(), review.AnalysisResult{TrustScore: 0.5, PredictedLabel: review.LabelGenuine, Explanation: "x"}, nil)
	rec.Wait()
	if item == nil {
		t.Fatalf("item must be returned even when persistence fails")
	}
}

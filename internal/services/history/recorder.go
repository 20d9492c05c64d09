package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	"github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/platform/redisbus"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
	writeTimeout     = 10 * time.Second
)

// Flagger queues low-trust items for moderation inside the history transaction.
type Flagger interface {
	Flag(ctx context.Context, tx *gorm.DB, reviewer string, item *review.HistoryItem) (*moderation.Item, error)
}

type Recorder interface {
	// RecordAsync stamps a new HistoryItem and persists it in the background.
	// The returned item carries the final ID and timestamp.
	RecordAsync(userID uuid.UUID, sub review.Submission, res review.AnalysisResult, pred *review.Prediction) *review.HistoryItem
	// Wait blocks until every pending write has finished.
	Wait()
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*review.HistoryItem, error)
}

type recorder struct {
	db      *gorm.DB
	log     *logger.Logger
	history repos.HistoryRepo
	users   repos.UserRepo
	flagger Flagger
	bus     redisbus.Publisher
	metrics *observability.Metrics
	wg      sync.WaitGroup
}

func NewRecorder(
	db *gorm.DB,
	log *logger.Logger,
	history repos.HistoryRepo,
	users repos.UserRepo,
	flagger Flagger,
	bus redisbus.Publisher,
	metrics *observability.Metrics,
) Recorder {
	return &recorder{
		db:      db,
		log:     log.With("service", "HistoryRecorder"),
		history: history,
		users:   users,
		flagger: flagger,
		bus:     bus,
		metrics: metrics,
	}
}

func (r *recorder) RecordAsync(userID uuid.UUID, sub review.Submission, res review.AnalysisResult, pred *review.Prediction) *review.HistoryItem {
	var features datatypes.JSON
	if pred != nil && len(pred.Explanation) > 0 {
		if raw, err := json.Marshal(pred.Explanation); err == nil {
			features = datatypes.JSON(raw)
		}
	}
	item := review.NewHistoryItem(userID, sub, res, features)
	snapshot := *item

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := r.write(ctx, &snapshot); err != nil {
			r.metrics.IncHistoryWrite("error")
			r.log.Error("history write failed", "history_id", snapshot.ID, "user_id", userID, "error", err)
			return
		}
		r.metrics.IncHistoryWrite("ok")
	}()
	return item
}

func (r *recorder) write(ctx context.Context, item *review.HistoryItem) error {
	var flagged bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := r.history.Create(dbc, []*review.HistoryItem{item}); err != nil {
			return fmt.Errorf("create history item: %w", err)
		}
		if r.flagger == nil {
			return nil
		}
		mi, err := r.flagger.Flag(ctx, tx, r.reviewerName(dbc, item.UserID), item)
		if err != nil {
			return err
		}
		flagged = mi != nil
		return nil
	})
	if err != nil {
		return err
	}

	r.publish(ctx, redisbus.TopicAnalysisCompleted, item)
	if flagged {
		r.publish(ctx, redisbus.TopicModerationFlagged, item)
	}
	return nil
}

func (r *recorder) reviewerName(dbc dbctx.Context, userID uuid.UUID) string {
	if r.users == nil {
		return userID.String()
	}
	found, err := r.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil || len(found) == 0 {
		return userID.String()
	}
	return found[0].Email
}

func (r *recorder) publish(ctx context.Context, topic string, item *review.HistoryItem) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, topic, item); err != nil {
		r.log.Warn("publish failed", "topic", topic, "history_id", item.ID, "error", err)
	}
}

func (r *recorder) Wait() { r.wg.Wait() }

func (r *recorder) List(ctx context.Context, userID uuid.UUID, limit int) ([]*review.HistoryItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return r.history.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit)
}

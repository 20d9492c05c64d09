package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type LabelCount struct {
	Label review.Label
	Count int64
}

type HistoryRepo interface {
	Create(dbc dbctx.Context, items []*review.HistoryItem) ([]*review.HistoryItem, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*review.HistoryItem, error)
	// ListByUser returns the user's newest items first.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*review.HistoryItem, error)
	CountByLabel(dbc dbctx.Context) ([]LabelCount, error)
	ListTrustScores(dbc dbctx.Context) ([]float64, error)
	ListTimestampsSince(dbc dbctx.Context, since time.Time) ([]time.Time, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (hr *historyRepo) Create(dbc dbctx.Context, items []*review.HistoryItem) ([]*review.HistoryItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = hr.db
	}

	if len(items) == 0 {
		return []*review.HistoryItem{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (hr *historyRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*review.HistoryItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = hr.db
	}

	var results []*review.HistoryItem
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *historyRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*review.HistoryItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = hr.db
	}

	var results []*review.HistoryItem
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *historyRepo) CountByLabel(dbc dbctx.Context) ([]LabelCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = hr.db
	}

	var rows []LabelCount
	if err := transaction.WithContext(dbc.Ctx).
		Model(&review.HistoryItem{}).
		Select("predicted_label AS label, count(*) AS count").
		Group("predicted_label").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (hr *historyRepo) ListTrustScores(dbc dbctx.Context) ([]float64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = hr.db
	}

	var scores []float64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&review.HistoryItem{}).
		Pluck("trust_score", &scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (hr *historyRepo) ListTimestampsSince(dbc dbctx.Context, since time.Time) ([]time.Time, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = hr.db
	}

	var rows []struct{ Timestamp time.Time }
	if err := transaction.WithContext(dbc.Ctx).
		Model(&review.HistoryItem{}).
		Select("timestamp").
		Where("timestamp >= ?", since.UTC()).
		Order("timestamp ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Timestamp)
	}
	return out, nil
}

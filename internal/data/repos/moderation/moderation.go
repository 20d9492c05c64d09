package moderation

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ModerationRepo interface {
	Create(dbc dbctx.Context, items []*moderation.Item) ([]*moderation.Item, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*moderation.Item, error)
	// List returns newest first; a nil status lists every item.
	List(dbc dbctx.Context, status *moderation.Status, limit int) ([]*moderation.Item, error)
	Count(dbc dbctx.Context) (int64, error)
	// Decide moves an item out of pending. It reports false when the item was not pending.
	Decide(dbc dbctx.Context, id uuid.UUID, to moderation.Status, reviewer uuid.UUID, at time.Time) (bool, error)
}

type moderationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModerationRepo(db *gorm.DB, baseLog *logger.Logger) ModerationRepo {
	repoLog := baseLog.With("repo", "ModerationRepo")
	return &moderationRepo{db: db, log: repoLog}
}

func (mr *moderationRepo) Create(dbc dbctx.Context, items []*moderation.Item) ([]*moderation.Item, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(items) == 0 {
		return []*moderation.Item{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (mr *moderationRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*moderation.Item, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*moderation.Item
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

func (mr *moderationRepo) List(dbc dbctx.Context, status *moderation.Status, limit int) ([]*moderation.Item, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*moderation.Item
	q := transaction.WithContext(dbc.Ctx).Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moderationRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).Model(&moderation.Item{}).Count(&n).Error
	return n, err
}

func (mr *moderationRepo) Decide(dbc dbctx.Context, id uuid.UUID, to moderation.Status, reviewer uuid.UUID, at time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&moderation.Item{}).
		Where("id = ? AND status = ?", id, moderation.StatusPending).
		Updates(map[string]any{
			"status":      to,
			"reviewed_by": reviewer,
			"reviewed_at": at.UTC(),
			"updated_at":  at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

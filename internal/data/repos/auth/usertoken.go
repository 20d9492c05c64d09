package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/trustlens-backend/internal/domain"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) ([]*types.UserToken, error)
	GetActiveByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	RevokeByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID, at time.Time) error
	RevokeByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID, at time.Time) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&userTokens).Error; err != nil {
		return nil, err
	}

	return userTokens, nil
}

func (utr *userTokenRepo) GetByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) ([]*types.UserToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	var results []*types.UserToken

	if len(tokenIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", tokenIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (utr *userTokenRepo) GetActiveByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	var results []*types.UserToken

	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id IN ? AND revoked_at IS NULL AND expires_at > ?", userIDs, time.Now().UTC()).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (utr *userTokenRepo) RevokeByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}
	if len(tokenIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.UserToken{}).
		Where("id IN ? AND revoked_at IS NULL", tokenIDs).
		Update("revoked_at", at.UTC()).Error
}

func (utr *userTokenRepo) RevokeByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}
	if len(userIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.UserToken{}).
		Where("user_id IN ? AND revoked_at IS NULL", userIDs).
		Update("revoked_at", at.UTC()).Error
}

func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("expires_at < ?", before.UTC()).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}

// IsRevoked treats unknown token ids as revoked: every issued token is recorded.
func (utr *userTokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return true, nil
	}
	var tok types.UserToken
	err = utr.db.WithContext(ctx).Where("id = ?", id).Take(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return tok.RevokedAt != nil, nil
}

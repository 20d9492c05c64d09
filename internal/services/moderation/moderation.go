package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	domain "github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/trustlens-backend/internal/pkg/errors"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/platform/redisbus"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	// LowTrustThreshold is the trust score below which analyses are flagged automatically.
	LowTrustThreshold = 0.4
	LowTrustReason    = "Low trust score"
)

type Service interface {
	List(ctx context.Context, status *domain.Status, limit int) ([]*domain.Item, error)
	Approve(ctx context.Context, id uuid.UUID, reviewer uuid.UUID) (*domain.Item, error)
	Reject(ctx context.Context, id uuid.UUID, reviewer uuid.UUID) (*domain.Item, error)
	// Flag queues a history item for review. It is a no-op for scores at or above the threshold.
	Flag(ctx context.Context, tx *gorm.DB, reviewer string, item *review.HistoryItem) (*domain.Item, error)
	Seed(ctx context.Context) (int, error)
}

type service struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ModerationRepo
	bus  redisbus.Publisher
	now  func() time.Time
}

func NewService(db *gorm.DB, log *logger.Logger, repo repos.ModerationRepo, bus redisbus.Publisher) Service {
	return &service{
		db:   db,
		log:  log.With("service", "ModerationService"),
		repo: repo,
		bus:  bus,
		now:  time.Now,
	}
}

func (s *service) List(ctx context.Context, status *domain.Status, limit int) ([]*domain.Item, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.List(dbctx.Context{Ctx: ctx}, status, limit)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, reviewer uuid.UUID) (*domain.Item, error) {
	return s.decide(ctx, id, domain.StatusApproved, reviewer)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, reviewer uuid.UUID) (*domain.Item, error) {
	return s.decide(ctx, id, domain.StatusRejected, reviewer)
}

func (s *service) decide(ctx context.Context, id uuid.UUID, to domain.Status, reviewer uuid.UUID) (*domain.Item, error) {
	var out *domain.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := s.repo.GetByIDs(dbc, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("load moderation item: %w", err)
		}
		if len(found) == 0 {
			return fmt.Errorf("moderation item %s: %w", id, pkgerrors.ErrNotFound)
		}
		ok, err := s.repo.Decide(dbc, id, to, reviewer, s.now())
		if err != nil {
			return fmt.Errorf("update moderation item: %w", err)
		}
		if !ok {
			return fmt.Errorf("moderation item already %s: %w", found[0].Status, pkgerrors.ErrConflict)
		}
		updated, err := s.repo.GetByIDs(dbc, []uuid.UUID{id})
		if err != nil || len(updated) == 0 {
			return fmt.Errorf("reload moderation item: %w", err)
		}
		out = updated[0]
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrConflict) && !errors.Is(err, pkgerrors.ErrNotFound) {
			s.log.Error("moderation decision failed", "item_id", id, "error", err)
		}
		return nil, err
	}
	s.log.Info("moderation decided", "item_id", id, "status", to, "reviewer_id", reviewer)
	if perr := s.bus.Publish(ctx, redisbus.TopicModerationDecided, out); perr != nil {
		s.log.Warn("publish moderation decision failed", "item_id", id, "error", perr)
	}
	return out, nil
}

func (s *service) Flag(ctx context.Context, tx *gorm.DB, reviewer string, item *review.HistoryItem) (*domain.Item, error) {
	if item == nil || item.TrustScore >= LowTrustThreshold {
		return nil, nil
	}
	historyID := item.ID
	mi := &domain.Item{
		HistoryItemID:    &historyID,
		Reviewer:         reviewer,
		ReviewText:       item.ReviewText,
		ProductOrService: item.ProductOrService,
		Platform:         item.Platform,
		Credibility:      domain.Credibility(item.TrustScore),
		PredictedLabel:   item.PredictedLabel,
		Reason:           LowTrustReason,
		Status:           domain.StatusPending,
	}
	if _, err := s.repo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*domain.Item{mi}); err != nil {
		return nil, fmt.Errorf("flag history item %s: %w", item.ID, err)
	}
	return mi, nil
}

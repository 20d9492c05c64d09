package moderation

import (
	"context"
	"fmt"
	"time"

	domain "github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
)

type seedItem struct {
	reviewer    string
	credibility int
	review      string
	product     string
	reason      string
	date        string
	status      domain.Status
}

var seedQueue = []seedItem{
	{"user123@example.com", 85, "This product is an absolute game-changer! I cannot recommend it enough. Changed my life!", "Quantum-Flux Capacitor", "Overly positive", "2023-10-26", domain.StatusPending},
	{"bot-killer99@example.com", 12, "BUY NOW!!! BEST EVER!!! CLICK HERE www.scam.com", "SonicScrewdriver 3000", "Spam-like", "2023-10-25", domain.StatusPending},
	{"jane.doe@example.com", 92, "While the build quality is excellent, I found the software to be a bit buggy. The main feature works as advertised, but the companion app often crashes.", "Chrono-Shift Watch", "User report", "2023-10-24", domain.StatusApproved},
	{"competitor_spy@example.com", 25, "This is the worst thing I have ever bought. It broke after one use. Do not buy, go for the other brand instead.", "AstroBook Pro", "Malicious", "2023-10-23", domain.StatusRejected},
	{"sally.s@example.com", 78, "It's a good product for the price. Not the best, but it gets the job done. I would probably buy it again if it were on sale.", "Desktop Lamp v2", "AI Flag: Unusual phrasing", "2023-10-22", domain.StatusPending},
	{"mike.t@example.com", 45, "Amazing, incredible, fantastic! You must buy this now. I have never seen anything like it. Five stars! Best purchase of my life!", "Super Blender 5000", "Overly positive", "2023-10-21", domain.StatusRejected},
	{"real-user-01@example.com", 88, "The shipping was a bit slow, took almost a week to arrive. But the product itself is high quality. I've been using it for a few days and I'm impressed.", "Ergonomic Chair", "AI Flag: Mention of shipping", "2023-10-20", domain.StatusApproved},
}

// Seed loads the starter queue into an empty table. It returns how many items were inserted.
func (s *service) Seed(ctx context.Context) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}
	n, err := s.repo.Count(dbc)
	if err != nil {
		return 0, fmt.Errorf("count moderation items: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	items := make([]*domain.Item, 0, len(seedQueue))
	for _, si := range seedQueue {
		created, err := time.Parse("2006-01-02", si.date)
		if err != nil {
			return 0, fmt.Errorf("seed date %q: %w", si.date, err)
		}
		label := review.LabelGenuine
		if si.credibility < 50 {
			label = review.LabelFake
		}
		it := &domain.Item{
			Reviewer:         si.reviewer,
			ReviewText:       si.review,
			ProductOrService: si.product,
			Platform:         review.PlatformOther,
			Credibility:      si.credibility,
			PredictedLabel:   label,
			Reason:           si.reason,
			Status:           si.status,
			CreatedAt:        created.UTC(),
			UpdatedAt:        created.UTC(),
		}
		if si.status != domain.StatusPending {
			at := created.UTC()
			it.ReviewedAt = &at
		}
		items = append(items, it)
	}
	if _, err := s.repo.Create(dbc, items); err != nil {
		return 0, fmt.Errorf("seed moderation queue: %w", err)
	}
	s.log.Info("moderation queue seeded", "count", len(items))
	return len(items), nil
}

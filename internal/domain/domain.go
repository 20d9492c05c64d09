package domain

import (
	"github.com/yungbote/trustlens-backend/internal/domain/auth"
	"github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/domain/user"
)

type (
	User        = user.User
	UserToken   = auth.UserToken
	HistoryItem = review.HistoryItem
	Submission  = review.Submission

	ModerationItem   = moderation.Item
	ModerationStatus = moderation.Status
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&auth.UserToken{},
		&review.HistoryItem{},
		&moderation.Item{},
	}
}

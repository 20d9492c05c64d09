package repos

import (
	"github.com/yungbote/trustlens-backend/internal/data/repos/auth"
	"github.com/yungbote/trustlens-backend/internal/data/repos/history"
	"github.com/yungbote/trustlens-backend/internal/data/repos/moderation"
	"github.com/yungbote/trustlens-backend/internal/data/repos/user"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type HistoryRepo = history.HistoryRepo
type ModerationRepo = moderation.ModerationRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return history.NewHistoryRepo(db, baseLog)
}

func NewModerationRepo(db *gorm.DB, baseLog *logger.Logger) ModerationRepo {
	return moderation.NewModerationRepo(db, baseLog)
}

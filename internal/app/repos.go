package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	History    repos.HistoryRepo
	Moderation repos.ModerationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		History:    repos.NewHistoryRepo(db, log),
		Moderation: repos.NewModerationRepo(db, log),
	}
}

package db

import (
	"fmt"

	types "github.com/yungbote/trustlens-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureIndexes adds Postgres-only indexes that GORM tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_user_token_active ON user_token(user_id) WHERE revoked_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_moderation_item_pending ON moderation_item(created_at DESC) WHERE status = 'pending';`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}

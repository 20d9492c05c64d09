package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/trustlens-backend/internal/domain/user"
)

// UserToken records an issued access token by its jti so it can be revoked before expiry.
type UserToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ExpiresAt time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (UserToken) TableName() string { return "user_token" }

func (t *UserToken) Active(now time.Time) bool {
	return t != nil && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

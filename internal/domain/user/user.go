package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Role     string    `gorm:"not null;default:user;column:role" json:"role"`
	Verified bool      `gorm:"not null;default:false;column:verified" json:"verified"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// AccountAgeDays is the whole number of days since the account was created.
func (u *User) AccountAgeDays(now time.Time) int {
	if u == nil || u.CreatedAt.IsZero() || now.Before(u.CreatedAt) {
		return 0
	}
	return int(now.Sub(u.CreatedAt) / (24 * time.Hour))
}

package moderation

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), true
	}
	return "", false
}

type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// BandFor buckets a 0-100 credibility score.
func BandFor(credibility int) Band {
	switch {
	case credibility > 75:
		return BandHigh
	case credibility > 40:
		return BandMedium
	default:
		return BandLow
	}
}

// Credibility converts a [0,1] trust score into the 0-100 scale used by moderators.
func Credibility(trustScore float64) int {
	c := int(trustScore*100 + 0.5)
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Item is a review flagged for human moderation.
type Item struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	HistoryItemID    *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"historyItemId,omitempty"`
	Reviewer         string          `gorm:"not null" json:"reviewer"`
	ReviewText       string          `gorm:"type:text;not null" json:"reviewText"`
	ProductOrService string          `gorm:"not null" json:"productOrService"`
	Platform         review.Platform `gorm:"not null" json:"platform"`
	Credibility      int             `gorm:"not null" json:"credibility"`
	PredictedLabel   review.Label    `gorm:"not null" json:"predictedLabel"`
	Reason           string          `gorm:"not null" json:"reason"`
	Status           Status          `gorm:"not null;index;default:pending" json:"status"`
	ReviewedBy       *uuid.UUID      `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Item) TableName() string { return "moderation_item" }

func (m *Item) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = StatusPending
	}
	return nil
}

func (m Item) Band() Band { return BandFor(m.Credibility) }

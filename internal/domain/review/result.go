package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisResult is what the presentation layer renders.
type AnalysisResult struct {
	TrustScore     float64 `json:"trustScore"`
	PredictedLabel Label   `json:"predictedLabel"`
	Explanation    string  `json:"explanation"`
}

// HistoryItem pairs a submission with its result. Rows are append-only.
type HistoryItem struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_history_user_ts,priority:1" json:"userId"`
	Timestamp        time.Time      `gorm:"not null;index:idx_history_user_ts,priority:2,sort:desc" json:"timestamp"`
	ReviewText       string         `gorm:"type:text;not null" json:"reviewText"`
	ProductOrService string         `gorm:"not null" json:"productOrService"`
	Platform         Platform       `gorm:"not null;index" json:"platform"`
	Language         string         `gorm:"column:language" json:"language,omitempty"`
	TrustScore       float64        `gorm:"not null" json:"trustScore"`
	PredictedLabel   Label          `gorm:"not null;index" json:"predictedLabel"`
	Explanation      string         `gorm:"type:text;not null" json:"explanation"`
	Features         datatypes.JSON `gorm:"column:features" json:"-"`
	CreatedAt        time.Time      `json:"-"`
}

func (HistoryItem) TableName() string { return "history_item" }

func (h *HistoryItem) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	return nil
}

func (h HistoryItem) Result() AnalysisResult {
	return AnalysisResult{TrustScore: h.TrustScore, PredictedLabel: h.PredictedLabel, Explanation: h.Explanation}
}

// NewHistoryItem builds the persisted record for a completed analysis.
func NewHistoryItem(userID uuid.UUID, sub Submission, res AnalysisResult, features datatypes.JSON) *HistoryItem {
	return &HistoryItem{
		ID:               uuid.New(),
		UserID:           userID,
		Timestamp:        time.Now().UTC(),
		ReviewText:       sub.ReviewText,
		ProductOrService: sub.ProductOrService,
		Platform:         sub.Platform,
		Language:         sub.Language,
		TrustScore:       res.TrustScore,
		PredictedLabel:   res.PredictedLabel,
		Explanation:      res.Explanation,
		Features:         features,
	}
}

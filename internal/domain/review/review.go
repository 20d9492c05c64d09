package review

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinReviewTextLen = 20
	MaxReviewTextLen = 5000
	MinProductLen    = 2
	MaxProductLen    = 50
	DefaultLanguage  = "en"
)

type Platform string

const (
	PlatformAmazon      Platform = "amazon"
	PlatformYelp        Platform = "yelp"
	PlatformGoogleMaps  Platform = "google-maps"
	PlatformTripAdvisor Platform = "tripadvisor"
	PlatformOther       Platform = "other"
)

var Platforms = []Platform{PlatformAmazon, PlatformYelp, PlatformGoogleMaps, PlatformTripAdvisor, PlatformOther}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

type Label string

const (
	LabelGenuine Label = "genuine"
	LabelFake    Label = "fake"
)

// ParseLabel is the lenient form for user input; it ignores case and surrounding space.
func ParseLabel(raw string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(raw))) {
	case LabelGenuine:
		return LabelGenuine, nil
	case LabelFake:
		return LabelFake, nil
	default:
		return "", fmt.Errorf("unknown label %q", raw)
	}
}

// ExactLabel accepts only the canonical spellings, as sent by the prediction service.
func ExactLabel(raw string) (Label, error) {
	switch Label(raw) {
	case LabelGenuine, LabelFake:
		return Label(raw), nil
	default:
		return "", fmt.Errorf("unknown label %q", raw)
	}
}

// Metadata describes the reviewer account; it is sent alongside the text to the prediction service.
type Metadata struct {
	Verified       bool `json:"verified"`
	AccountAgeDays int  `json:"account_age_days"`
}

// Submission is a single review handed in for analysis. Immutable once built.
type Submission struct {
	ReviewText       string   `json:"reviewText"`
	ProductOrService string   `json:"productOrService"`
	Platform         Platform `json:"platform"`
	Language         string   `json:"language,omitempty"`
	Metadata         Metadata `json:"-"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Normalize trims whitespace and lower-cases the platform.
func (s Submission) Normalize() Submission {
	s.ReviewText = strings.TrimSpace(s.ReviewText)
	s.ProductOrService = strings.TrimSpace(s.ProductOrService)
	s.Platform = Platform(strings.ToLower(strings.TrimSpace(string(s.Platform))))
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))
	return s
}

func (s Submission) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(s.ReviewText))
	if n < MinReviewTextLen {
		return &ValidationError{Field: "reviewText", Message: "Review text must be at least 20 characters."}
	}
	if n > MaxReviewTextLen {
		return &ValidationError{Field: "reviewText", Message: "Review text must be at most 5000 characters."}
	}
	p := utf8.RuneCountInString(strings.TrimSpace(s.ProductOrService))
	if p < MinProductLen {
		return &ValidationError{Field: "productOrService", Message: "Product/Service is required."}
	}
	if p > MaxProductLen {
		return &ValidationError{Field: "productOrService", Message: "Product/Service must be at most 50 characters."}
	}
	if strings.TrimSpace(string(s.Platform)) == "" {
		return &ValidationError{Field: "platform", Message: "Please select a platform."}
	}
	if !s.Platform.Valid() {
		return &ValidationError{Field: "platform", Message: fmt.Sprintf("Unsupported platform %q.", s.Platform)}
	}
	return nil
}

// Lang returns the submission language, falling back to English.
func (s Submission) Lang() string {
	if l := strings.TrimSpace(s.Language); l != "" {
		return l
	}
	return DefaultLanguage
}

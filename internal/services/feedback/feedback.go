package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	pkgerrors "github.com/yungbote/trustlens-backend/internal/pkg/errors"
	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const Endpoint = "/api/v1/feedback"

// Feedback is a user's correction of a verdict.
type Feedback struct {
	Review string       `json:"review"`
	Label  review.Label `json:"label"`
}

func (f Feedback) Validate() error {
	if strings.TrimSpace(f.Review) == "" {
		return fmt.Errorf("review is required: %w", pkgerrors.ErrInvalidArgument)
	}
	if _, err := review.ParseLabel(string(f.Label)); err != nil {
		return fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument)
	}
	return nil
}

type Service interface {
	Submit(ctx context.Context, fb Feedback, token string) (json.RawMessage, error)
}

type service struct {
	log *logger.Logger
	api *apiclient.Client
}

func NewService(log *logger.Logger, api *apiclient.Client) Service {
	return &service{log: log.With("service", "FeedbackService"), api: api}
}

func (s *service) Submit(ctx context.Context, fb Feedback, token string) (json.RawMessage, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	label, _ := review.ParseLabel(string(fb.Label))
	fb.Label = label
	fb.Review = strings.TrimSpace(fb.Review)

	raw, err := s.api.Call(ctx, http.MethodPost, Endpoint, fb, apiclient.WithTokenSource(auth.StaticToken(token)))
	if err != nil {
		s.log.Warn("feedback forward failed", "error", err)
		return nil, err
	}
	return raw, nil
}

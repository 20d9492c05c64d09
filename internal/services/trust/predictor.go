package trust

import (
	"context"
	"net/http"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
)

const PredictEndpoint = "/api/v1/predict"

// Predictor sends one review to the prediction service and returns the raw body.
type Predictor interface {
	Predict(ctx context.Context, req review.PredictRequest, token string) ([]byte, error)
}

type httpPredictor struct {
	api *apiclient.Client
}

func NewPredictor(api *apiclient.Client) Predictor {
	return &httpPredictor{api: api}
}

func (p *httpPredictor) Predict(ctx context.Context, req review.PredictRequest, token string) ([]byte, error) {
	raw, err := p.api.Call(ctx, http.MethodPost, PredictEndpoint, req, apiclient.WithTokenSource(auth.StaticToken(token)))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

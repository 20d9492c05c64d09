package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrEmptyPrediction is returned when the prediction body is null or missing required fields.
var ErrEmptyPrediction = errors.New("empty prediction")

// PredictRequest is the body posted to the prediction endpoint.
type PredictRequest struct {
	Text     string   `json:"text"`
	Lang     string   `json:"lang"`
	Metadata Metadata `json:"metadata"`
}

func NewPredictRequest(sub Submission) PredictRequest {
	return PredictRequest{Text: sub.ReviewText, Lang: sub.Lang(), Metadata: sub.Metadata}
}

// Prediction is the validated form of the prediction service output.
type Prediction struct {
	Label       Label          `json:"label"`
	TrustScore  float64        `json:"trust_score"`
	Explanation map[string]any `json:"explanation,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type rawPrediction struct {
	Label       *string         `json:"label"`
	TrustScore  *float64        `json:"trust_score"`
	Explanation json.RawMessage `json:"explanation"`
	Meta        map[string]any  `json:"meta"`
}

// DecodePrediction checks the untyped response body before any field is read.
// A nil return error guarantees Label is genuine|fake and TrustScore is in [0,1].
func DecodePrediction(raw []byte) (*Prediction, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyPrediction
	}
	var rp rawPrediction
	if err := json.Unmarshal(trimmed, &rp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyPrediction, err)
	}
	if rp.Label == nil || rp.TrustScore == nil {
		return nil, fmt.Errorf("%w: missing label or trust_score", ErrEmptyPrediction)
	}
	label, err := ExactLabel(*rp.Label)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyPrediction, err)
	}
	score := *rp.TrustScore
	if math.IsNaN(score) || score < 0 || score > 1 {
		return nil, fmt.Errorf("%w: trust_score %v outside [0,1]", ErrEmptyPrediction, score)
	}
	p := &Prediction{Label: label, TrustScore: score, Meta: rp.Meta}
	if len(rp.Explanation) > 0 && !bytes.Equal(bytes.TrimSpace(rp.Explanation), []byte("null")) {
		features := map[string]any{}
		if err := json.Unmarshal(rp.Explanation, &features); err != nil {
			// Non-object explanation payloads are kept verbatim under a single key.
			var v any
			if json.Unmarshal(rp.Explanation, &v) == nil {
				features = map[string]any{"raw": v}
			}
		}
		p.Explanation = features
	}
	return p, nil
}

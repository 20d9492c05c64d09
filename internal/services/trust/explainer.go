package trust

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/platform/openai"
)

// Explainer turns a verdict into user-facing text. An empty string means no explanation.
type Explainer interface {
	Explain(ctx context.Context, in ExplainInput) (string, error)
}

type llmExplainer struct {
	log    *logger.Logger
	ai     openai.Client
	prompt *explanationPrompt
}

func NewExplainer(log *logger.Logger, ai openai.Client) (Explainer, error) {
	if ai == nil {
		return nil, fmt.Errorf("openai client required")
	}
	p, err := loadPrompt()
	if err != nil {
		return nil, err
	}
	return &llmExplainer{log: log.With("service", "TrustExplainer"), ai: ai, prompt: p}, nil
}

func (e *llmExplainer) Explain(ctx context.Context, in ExplainInput) (string, error) {
	system, user, err := e.prompt.render(in)
	if err != nil {
		return "", fmt.Errorf("render explanation prompt: %w", err)
	}
	obj, err := e.ai.GenerateJSON(ctx, system, user, e.prompt.spec.SchemaName, explanationSchema())
	if err != nil {
		return "", err
	}
	text, _ := obj["explanation"].(string)
	return strings.TrimSpace(text), nil
}

type templateExplainer struct{}

// NewTemplateExplainer builds fixed-phrase explanations, for deployments with no OpenAI key.
func NewTemplateExplainer() Explainer { return templateExplainer{} }

func (templateExplainer) Explain(ctx context.Context, in ExplainInput) (string, error) {
	var why, follow string
	switch {
	case in.TrustScore >= 0.75:
		why = "it reads like a first-hand account with a balanced tone"
		follow = "Reviews with this kind of specific, measured detail are usually written by real customers."
	case in.TrustScore >= 0.4:
		why = "it shows a mix of specific detail and generic phrasing"
		follow = "Some parts sound personal while others could describe almost any product, so it is worth reading with care."
	default:
		why = "it leans on generic or exaggerated language with little concrete detail"
		follow = "Genuine reviews tend to mention specific experiences, which this one mostly avoids."
	}
	return fmt.Sprintf("Our analysis suggests this review is likely %s because %s. %s", in.Label, why, follow), nil
}

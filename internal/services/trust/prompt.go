package trust

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
)

//go:embed prompt.yaml
var promptYAML []byte

const maxFeatureRunes = 240

type promptSpec struct {
	Name        string `yaml:"name"`
	SchemaName  string `yaml:"schema_name"`
	MaxFeatures int    `yaml:"max_features"`
	System      string `yaml:"system"`
	User        string `yaml:"user"`
}

type explanationPrompt struct {
	spec promptSpec
	user *template.Template
}

var (
	promptOnce sync.Once
	promptVal  *explanationPrompt
	promptErr  error
)

func loadPrompt() (*explanationPrompt, error) {
	promptOnce.Do(func() {
		promptVal, promptErr = parsePrompt(promptYAML)
	})
	return promptVal, promptErr
}

func parsePrompt(data []byte) (*explanationPrompt, error) {
	var spec promptSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse prompt yaml: %w", err)
	}
	if strings.TrimSpace(spec.System) == "" || strings.TrimSpace(spec.User) == "" {
		return nil, fmt.Errorf("prompt %q: system and user are required", spec.Name)
	}
	if spec.SchemaName == "" {
		spec.SchemaName = "trust_explanation"
	}
	if spec.MaxFeatures <= 0 {
		spec.MaxFeatures = 8
	}
	tmpl, err := template.New(spec.Name).Option("missingkey=error").Parse(spec.User)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &explanationPrompt{spec: spec, user: tmpl}, nil
}

// ExplainInput is everything the explanation step may look at.
type ExplainInput struct {
	ReviewText       string
	ProductOrService string
	Platform         review.Platform
	Language         string
	Label            review.Label
	TrustScore       float64
	Features         map[string]any
}

type promptData struct {
	ReviewText       string
	ProductOrService string
	Platform         review.Platform
	Language         string
	Label            review.Label
	TrustScore       float64
	Features         []string
}

func (p *explanationPrompt) render(in ExplainInput) (string, string, error) {
	var b strings.Builder
	err := p.user.Execute(&b, promptData{
		ReviewText:       in.ReviewText,
		ProductOrService: in.ProductOrService,
		Platform:         in.Platform,
		Language:         in.Language,
		Label:            in.Label,
		TrustScore:       in.TrustScore,
		Features:         featureLines(in.Features, p.spec.MaxFeatures),
	})
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(p.spec.System), strings.TrimSpace(b.String()), nil
}

// featureLines flattens the auxiliary features into sorted "key: value" lines.
func featureLines(features map[string]any, max int) []string {
	if len(features) == 0 {
		return nil
	}
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if max > 0 && len(out) >= max {
			break
		}
		var val string
		switch v := features[k].(type) {
		case string:
			val = v
		case float64:
			val = fmt.Sprintf("%.4g", v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			val = string(raw)
		}
		if utf8.RuneCountInString(val) > maxFeatureRunes {
			val = string([]rune(val)[:maxFeatureRunes]) + "..."
		}
		out = append(out, k+": "+val)
	}
	return out
}

func explanationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string"},
		},
		"required": []any{"explanation"},
	}
}

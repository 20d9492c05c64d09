package review

import (
	"errors"
	"strings"
	"testing"
)

func validSubmission() Submission {
	return Submission{
		ReviewText:       "Used it for a month, battery is great, screen is gorgeous...",
		ProductOrService: "AstroBook Pro",
		Platform:         PlatformAmazon,
	}
}

func TestSubmissionValidate(t *testing.T) {
	if err := validSubmission().Validate(); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	cases := map[string]func(*Submission){
		"reviewText":       func(s *Submission) { s.ReviewText = "too short" },
		"productOrService": func(s *Submission) { s.ProductOrService = "A" },
		"platform":         func(s *Submission) { s.Platform = "" },
	}
	for field, mutate := range cases {
		sub := validSubmission()
		mutate(&sub)
		err := sub.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", field, err)
		}
		if ve.Field != field {
			t.Fatalf("%s: wrong field %q", field, ve.Field)
		}
	}

	long := validSubmission()
	long.ReviewText = strings.Repeat("a", MaxReviewTextLen+1)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected over-long review to fail")
	}

	unknown := validSubmission()
	unknown.Platform = "ebay"
	if err := unknown.Validate(); err == nil {
		t.Fatalf("expected unknown platform to fail")
	}
}

func TestSubmissionLangDefaultsToEnglish(t *testing.T) {
	sub := validSubmission()
	if sub.Lang() != "en" {
		t.Fatalf("default lang: got=%q", sub.Lang())
	}
	sub.Language = "hi"
	if NewPredictRequest(sub).Lang != "hi" {
		t.Fatalf("explicit lang not forwarded")
	}
}

func TestDecodePrediction(t *testing.T) {
	p, err := DecodePrediction([]byte(`{"label":"genuine","trust_score":0.92,"explanation":{"shap":{"len":0.1}},"meta":{"lang":"en"}}`))
	if err != nil {
		t.Fatalf("DecodePrediction: %v", err)
	}
	if p.Label != LabelGenuine || p.TrustScore != 0.92 {
		t.Fatalf("unexpected prediction: %+v", p)
	}
	if _, ok := p.Explanation["shap"]; !ok {
		t.Fatalf("explanation features dropped: %+v", p.Explanation)
	}

	bad := []string{
		``,
		`null`,
		`{}`,
		`{"label":"genuine"}`,
		`{"label":"maybe","trust_score":0.5}`,
		`{"label":"fake","trust_score":1.5}`,
		`{"label":"fake","trust_score":-0.1}`,
		`[1,2]`,
	}
	for _, body := range bad {
		if _, err := DecodePrediction([]byte(body)); !errors.Is(err, ErrEmptyPrediction) {
			t.Fatalf("body %q: expected ErrEmptyPrediction, got %v", body, err)
		}
	}
}

func TestDecodePredictionKeepsBoundaryScores(t *testing.T) {
	for _, body := range []string{`{"label":"fake","trust_score":0}`, `{"label":"genuine","trust_score":1}`} {
		if _, err := DecodePrediction([]byte(body)); err != nil {
			t.Fatalf("body %q rejected: %v", body, err)
		}
	}
}

func TestDecodePredictionRequiresCanonicalLabel(t *testing.T) {
	for _, label := range []string{" Genuine ", "Genuine", "FAKE", "fake "} {
		body := `{"label":"` + label + `","trust_score":0.92}`
		if _, err := DecodePrediction([]byte(body)); !errors.Is(err, ErrEmptyPrediction) {
			t.Fatalf("label %q: expected ErrEmptyPrediction, got %v", label, err)
		}
	}
	if l, err := ParseLabel(" Genuine "); err != nil || l != LabelGenuine {
		t.Fatalf("lenient parse: %q %v", l, err)
	}
}

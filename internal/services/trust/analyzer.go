package trust

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/httpx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const msgExplainerFailed = "The AI model failed to generate an analysis. Please try again."

// Outcome is a finished analysis together with the prediction it was built from.
type Outcome struct {
	Result     review.AnalysisResult
	Prediction *review.Prediction
}

type Analyzer interface {
	// Analyze runs prediction then explanation for one submission. Errors are always *Error.
	Analyze(ctx context.Context, sub review.Submission, token string, observers ...Observer) (*Outcome, error)
}

type analyzer struct {
	log       *logger.Logger
	predictor Predictor
	explainer Explainer
	metrics   *observability.Metrics
}

func NewAnalyzer(log *logger.Logger, predictor Predictor, explainer Explainer, metrics *observability.Metrics) Analyzer {
	return &analyzer{
		log:       log.With("service", "TrustAnalyzer"),
		predictor: predictor,
		explainer: explainer,
		metrics:   metrics,
	}
}

func (a *analyzer) Analyze(ctx context.Context, sub review.Submission, token string, observers ...Observer) (*Outcome, error) {
	ctx, span := observability.Tracer().Start(ctx, "trust.Analyze")
	defer span.End()

	r := newRun(append([]Observer{a.metricsObserver()}, observers...)...)
	fail := func(e *Error) (*Outcome, error) {
		span.SetStatus(codes.Error, string(e.Kind))
		span.SetAttributes(attribute.String("trust.error_kind", string(e.Kind)))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		a.log.Warn("analysis failed", "kind", e.Kind, "error", e.Err)
		return nil, r.fail(e)
	}

	if strings.TrimSpace(token) == "" {
		return fail(newError(KindAuthentication, MsgNotLoggedIn, nil))
	}

	r.to(StateSubmitting)
	if err := sub.Validate(); err != nil {
		return fail(newError(KindInvalid, err.Error(), err))
	}
	span.SetAttributes(
		attribute.String("review.platform", string(sub.Platform)),
		attribute.String("review.lang", sub.Lang()),
	)

	r.to(StatePredictionPending)
	start := time.Now()
	raw, err := a.predictor.Predict(ctx, review.NewPredictRequest(sub), token)
	if err != nil {
		e := classifyPredictError(err)
		a.metrics.ObservePrediction(string(e.Kind), time.Since(start))
		return fail(e)
	}
	pred, err := review.DecodePrediction(raw)
	if err != nil {
		a.metrics.ObservePrediction(string(KindEmptyResult), time.Since(start))
		return fail(newError(KindEmptyResult, MsgEmptyPrediction, err))
	}
	a.metrics.ObservePrediction("ok", time.Since(start))
	r.to(StatePredictionReceived)
	span.SetAttributes(
		attribute.String("trust.label", string(pred.Label)),
		attribute.Float64("trust.score", pred.TrustScore),
	)

	r.to(StateExplanationPending)
	text, err := a.explainer.Explain(ctx, ExplainInput{
		ReviewText:       sub.ReviewText,
		ProductOrService: sub.ProductOrService,
		Platform:         sub.Platform,
		Language:         sub.Language,
		Label:            pred.Label,
		TrustScore:       pred.TrustScore,
		Features:         pred.Explanation,
	})
	if err != nil {
		return fail(newError(KindUnexpected, msgExplainerFailed, err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fail(newError(KindEmptyResult, MsgEmptyExplanation, nil))
	}

	out := &Outcome{
		Result: review.AnalysisResult{
			TrustScore:     pred.TrustScore,
			PredictedLabel: pred.Label,
			Explanation:    text,
		},
		Prediction: pred,
	}
	r.to(StateComplete)
	a.metrics.ObserveTrustScore(string(pred.Label), pred.TrustScore)
	return out, nil
}

func (a *analyzer) metricsObserver() Observer {
	if a.metrics == nil {
		return nil
	}
	return ObserverFunc(func(from, to State, kind ErrorKind) {
		a.metrics.ObserveAnalysisState(string(to))
		if to.Terminal() {
			a.metrics.ObserveAnalysis(string(to), string(kind))
		}
	})
}

func classifyPredictError(err error) *Error {
	// A caller that went away is not an outage of the prediction service.
	if errors.Is(err, context.Canceled) {
		return newError(KindUnexpected, MsgUnexpected, err)
	}
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) {
		return newError(KindPredictionRejected, reqErr.Message, err)
	}
	var trErr *apiclient.TransportError
	if errors.As(err, &trErr) && httpx.IsUnreachable(trErr.Err) {
		return newError(KindServiceUnreachable, MsgServiceUnreachable, err)
	}
	return newError(KindUnexpected, MsgUnexpected, err)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Source names the entry point a submission arrived through. It is used as a
// metric label and log attribute.
type Source string

const (
	SourceForm   Source = "form"
	SourceAPI    Source = "api"
	SourceCLI    Source = "cli"
	SourceStream Source = "stream"
)

// Rejection reasons recorded on the rejected_requests_total metric.
const (
	ReasonOutOfRange      = "out_of_range"
	ReasonUnknownCategory = "unknown_category"
	ReasonMalformed       = "malformed"
)

// Assessor runs one submission through validate, encode, scale, classify, and
// render. It holds no per-request state and is safe for concurrent use.
type Assessor struct {
	scaler     domain.Scaler
	classifier domain.Classifier
	model      string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewAssessor creates an Assessor over a loaded scaler/classifier pair.
// A nil clock uses the real clock.
func NewAssessor(scaler domain.Scaler, classifier domain.Classifier, model string, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Assessor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Assessor{
		scaler:     scaler,
		classifier: classifier,
		model:      model,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Model returns the identifier of the loaded artifacts.
func (a *Assessor) Model() string {
	return a.model
}

// CheckReadiness reports whether both artifacts are in place.
func (a *Assessor) CheckReadiness(_ context.Context) error {
	if a.scaler == nil || a.classifier == nil {
		return errors.New("model artifacts not loaded")
	}
	return nil
}

// Assess validates req and produces its assessment. Validation failures are
// returned as joined *domain.ValidationError values (see domain.IsValidation);
// anything else is an inference failure. Predictions are never retried.
func (a *Assessor) Assess(ctx context.Context, source Source, req domain.FloodAssessmentRequest) (domain.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Assessment{}, err
	}

	if err := req.Validate(); err != nil {
		a.Reject(source, rejectReason(err))
		return domain.Assessment{}, err
	}

	features := domain.EncodeFeatures(req)

	start := a.clock.Now()
	label, err := domain.Infer(a.scaler, a.classifier, features)
	a.metrics.InferenceDuration.Observe(a.clock.Since(start).Seconds())
	if err != nil {
		a.metrics.InferenceErrors.Inc()
		a.logger.Error("inference failed", "error", err, "source", source, "model", a.model)
		return domain.Assessment{}, fmt.Errorf("assess: %w", err)
	}

	verdict := domain.Render(label)
	a.metrics.Assessments.WithLabelValues(label.String(), string(source)).Inc()

	assessment := domain.Assessment{
		ID:         uuid.NewString(),
		Request:    req,
		Features:   features.Named(),
		Verdict:    verdict,
		Model:      a.model,
		AssessedAt: a.clock.Now().UTC(),
	}

	a.logger.Debug("assessment complete",
		"id", assessment.ID,
		"source", source,
		"verdict", label,
	)
	return assessment, nil
}

// Reject records a submission turned away before inference.
func (a *Assessor) Reject(source Source, reason string) {
	a.metrics.RejectedRequests.WithLabelValues(string(source), reason).Inc()
}

func rejectReason(err error) string {
	if errors.Is(err, domain.ErrUnknownCategory) {
		return ReasonUnknownCategory
	}
	return ReasonOutOfRange
}

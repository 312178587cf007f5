// Package risk obtains a risk score in [0,1] for an access attempt. It prefers
// a remote scoring service and falls back to a profile-keyed heuristic on any
// failure; no error ever crosses the Oracle boundary.
package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/telemetry"
)

// DefaultTimeout bounds a single remote scoring call.
const DefaultTimeout = 2 * time.Second

// ErrMalformedResponse is returned by scorers that received an unusable payload.
var ErrMalformedResponse = errors.New("malformed risk response")

// Scorer is the remote scoring capability.
type Scorer interface {
	Score(ctx context.Context, features Features) (score float64, status int, err error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, features Features) (float64, int, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, features Features) (float64, int, error) {
	return f(ctx, features)
}

// Oracle wraps a Scorer with timeout, validation and fallback.
type Oracle struct {
	scorer  Scorer
	timeout time.Duration
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Oracle) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records every result.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Oracle) { o.metrics = m }
}

// NewOracle creates an Oracle. A nil scorer always takes the fallback path.
func NewOracle(scorer Scorer, opts ...Option) *Oracle {
	o := &Oracle{
		scorer:  scorer,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Score returns the risk score and the HTTP-style status of the attempt:
// the scorer's status on success, StatusFallback otherwise.
func (o *Oracle) Score(ctx context.Context, features Features, profile model.RiskProfile) (float64, int) {
	ctx, span := otel.Tracer("ztbench/risk").Start(ctx, "risk.Score")
	defer span.End()

	score, status, err := o.remote(ctx, features)
	if err != nil {
		score, status = Fallback(profile), model.StatusFallback
		o.logger.Debug("risk oracle fallback", "profile", profile, "score", score, "error", err)
	}
	span.SetAttributes(attribute.Float64("risk.score", score), attribute.Int("risk.status", status))
	o.metrics.IncrementOracle(status)
	return score, status
}

func (o *Oracle) remote(ctx context.Context, features Features) (score float64, status int, err error) {
	if o.scorer == nil {
		return 0, 0, errors.New("no risk scorer configured")
	}

	defer func() {
		if r := recover(); r != nil {
			score, status, err = 0, 0, errors.New("risk scorer panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	score, status, err = o.scorer.Score(ctx, features)
	if err != nil {
		return 0, 0, err
	}
	if status < 200 || status > 299 {
		return 0, 0, errors.New("non-2xx risk status")
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, 0, ErrMalformedResponse
	}
	return min(max(score, 0), 1), status, nil
}

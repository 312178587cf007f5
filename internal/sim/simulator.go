// Package sim runs one access attempt end to end: authentication, risk
// scoring, authorization, ledger dispatch and metric synthesis.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/ztbench/internal/alert"
	"github.com/ppiankov/ztbench/internal/audit"
	"github.com/ppiankov/ztbench/internal/auth"
	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/policy"
	"github.com/ppiankov/ztbench/internal/risk"
	"github.com/ppiankov/ztbench/internal/synth"
	"github.com/ppiankov/ztbench/internal/telemetry"
)

// unauthenticatedRisk is reported for attempts that never reach scoring.
const unauthenticatedRisk = 1.0

// Outcome labels used in logs and metrics.
const (
	OutcomeGranted         = alert.EventGranted
	OutcomeDenied          = alert.EventDenied
	OutcomeUnauthenticated = alert.EventUnauthenticated
)

// Clock supplies the time used for response-time measurement and ledger
// timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// DecisionLog receives one record per decision. Implementations must not
// block or fail the caller.
type DecisionLog interface {
	Dispatch(entry audit.Entry)
}

type discardLog struct{}

func (discardLog) Dispatch(audit.Entry) {}

// Notifier receives decision events for alerting. It must not block.
type Notifier interface {
	Dispatch(event alert.Event)
}

// Simulator is safe for concurrent use; each Run is independent given its
// scenario and random source.
type Simulator struct {
	oracle  *risk.Oracle
	policy  *policy.Config
	ledger  DecisionLog
	alerts  Notifier
	clock   Clock
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithPolicy sets the authorization configuration.
func WithPolicy(cfg *policy.Config) Option {
	return func(s *Simulator) {
		if cfg != nil {
			s.policy = cfg
		}
	}
}

// WithLedger sets where decision records are dispatched.
func WithLedger(l DecisionLog) Option {
	return func(s *Simulator) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithAlerts forwards every decision to n.
func WithAlerts(n Notifier) Option {
	return func(s *Simulator) { s.alerts = n }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Simulator) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records decisions and latencies.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

// New creates a Simulator. A nil oracle always uses the heuristic fallback.
func New(oracle *risk.Oracle, opts ...Option) *Simulator {
	if oracle == nil {
		oracle = risk.NewOracle(nil)
	}
	s := &Simulator{
		oracle: oracle,
		policy: policy.DefaultConfig(),
		ledger: discardLog{},
		clock:  systemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run simulates one access attempt. The only error is a scenario that fails
// validation (wrapping model.ErrInvalidConfig); every other failure is
// absorbed into the returned record. rng must not be shared with a
// concurrent Run; nil seeds a fresh source from the clock.
func (s *Simulator) Run(ctx context.Context, sc model.ScenarioConfig, rng *rand.Rand) (model.ResultRecord, error) {
	if err := sc.Validate(); err != nil {
		return model.ResultRecord{}, fmt.Errorf("scenario rejected: %w", err)
	}
	if rng == nil {
		rng = synth.NewRand(uint64(s.clock.Now().UnixNano()))
	}

	ctx, span := otel.Tracer("ztbench/sim").Start(ctx, "sim.Run", trace.WithAttributes(
		attribute.String("policy", string(sc.Policy)),
		attribute.String("zt_variant", string(sc.Variant)),
		attribute.Int("network_size", sc.NetworkSize),
	))
	defer span.End()

	start := s.clock.Now()

	if !auth.Authenticate(sc.Credentials(), sc.MFAEnabled) {
		elapsed := s.clock.Now().Sub(start)
		s.record(sc, false, unauthenticatedRisk)
		bundle := synth.Synthesize(rng, s.synthInput(sc, false, false, 0, elapsed))
		s.observe(sc, OutcomeUnauthenticated, unauthenticatedRisk, elapsed)
		s.notify(sc, OutcomeUnauthenticated, unauthenticatedRisk, bundle.HTTPStatus, "authentication failed")
		return model.NewResultRecord(sc, bundle, false, unauthenticatedRisk), nil
	}

	features, err := risk.BuildFeatures(sc)
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("scenario rejected: %w", err)
	}
	score, status := s.oracle.Score(ctx, features, sc.RiskProfile)

	decision := policy.Evaluate(sc.User(), score, sc.Policy, sc.Context(), s.policy)
	elapsed := s.clock.Now().Sub(start)

	s.record(sc, decision.Allowed, score)
	bundle := synth.Synthesize(rng, s.synthInput(sc, true, decision.Allowed, status, elapsed))

	outcome := OutcomeDenied
	if decision.Allowed {
		outcome = OutcomeGranted
	}
	s.observe(sc, outcome, score, elapsed, "reason", decision.Reason, "status", status)
	s.notify(sc, outcome, score, status, decision.Reason)

	return model.NewResultRecord(sc, bundle, decision.Allowed, score), nil
}

func (s *Simulator) synthInput(sc model.ScenarioConfig, authenticated, allowed bool, status int, elapsed time.Duration) synth.Input {
	return synth.Input{
		Variant:        sc.Variant,
		NetworkSize:    sc.NetworkSize,
		MaliciousRatio: sc.MaliciousRatio,
		AIThreshold:    sc.AIThreshold,
		Authenticated:  authenticated,
		Allowed:        allowed,
		HTTPStatus:     status,
		ResponseTime:   elapsed.Seconds(),
	}
}

func (s *Simulator) record(sc model.ScenarioConfig, allowed bool, score float64) {
	s.ledger.Dispatch(audit.Entry{
		User:      sc.UserID,
		Allowed:   allowed,
		Policy:    string(sc.Policy),
		Risk:      score,
		Timestamp: s.clock.Now().Unix(),
	})
}

func (s *Simulator) notify(sc model.ScenarioConfig, outcome string, score float64, status int, reason string) {
	if s.alerts == nil {
		return
	}
	s.alerts.Dispatch(alert.Event{
		Timestamp:  s.clock.Now().Unix(),
		User:       sc.UserID,
		Policy:     string(sc.Policy),
		Variant:    string(sc.Variant),
		Outcome:    outcome,
		Risk:       score,
		HTTPStatus: status,
		Reason:     reason,
	})
}

func (s *Simulator) observe(sc model.ScenarioConfig, outcome string, score float64, elapsed time.Duration, attrs ...any) {
	s.metrics.IncrementDecision(string(sc.Variant), string(sc.Policy), outcome)
	s.metrics.ObserveResponseTime(string(sc.Variant), elapsed)
	s.logger.Debug("access decision",
		append([]any{
			"user", sc.UserID,
			"policy", sc.Policy,
			"zt_variant", sc.Variant,
			"outcome", outcome,
			"risk", score,
			"elapsed", elapsed,
		}, attrs...)...)
}

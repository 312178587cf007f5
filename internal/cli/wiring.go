package cli

import (
	"fmt"

	"github.com/ppiankov/ztbench/internal/alert"
	"github.com/ppiankov/ztbench/internal/audit"
	"github.com/ppiankov/ztbench/internal/config"
	"github.com/ppiankov/ztbench/internal/policy"
	"github.com/ppiankov/ztbench/internal/risk"
	"github.com/ppiankov/ztbench/internal/sim"
	"github.com/ppiankov/ztbench/internal/telemetry"
)

// environment holds the collaborators of one command invocation.
type environment struct {
	sim        *sim.Simulator
	metrics    *telemetry.Metrics
	policyHash string

	closers []func()
}

// Close flushes the ledger and releases connections, in reverse order.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// newEnvironment builds a simulator from the resolved configuration.
func newEnvironment() (*environment, error) {
	env := &environment{metrics: telemetry.New()}

	policyCfg, hash, err := policy.LoadConfigWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	env.policyHash = hash

	oracle, err := env.oracle()
	if err != nil {
		env.Close()
		return nil, err
	}

	opts := []sim.Option{
		sim.WithPolicy(policyCfg),
		sim.WithLogger(logger),
		sim.WithMetrics(env.metrics),
	}

	if cfg.Ledger.Path != "" {
		ledger, err := audit.Open(cfg.Ledger.Path)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		d := audit.NewDispatcher(ledger,
			audit.WithLogger(logger),
			audit.WithMetrics(env.metrics),
			audit.WithBuffer(cfg.Ledger.Buffer),
		)
		env.closers = append(env.closers, func() {
			d.Close()
			ledger.Close()
		})
		opts = append(opts, sim.WithLedger(d))
	}

	if alerts := alert.NewDispatcher(cfg.Alerts, logger); alerts != nil {
		env.closers = append(env.closers, alerts.Wait)
		opts = append(opts, sim.WithAlerts(alerts))
	}

	env.sim = sim.New(oracle, opts...)
	logger.Debug("environment ready",
		"risk", cfg.Risk.Transport,
		"ledger", cfg.Ledger.Path,
		"policy_hash", hash)
	return env, nil
}

func (e *environment) oracle() (*risk.Oracle, error) {
	opts := []risk.Option{
		risk.WithTimeout(cfg.Risk.Timeout),
		risk.WithLogger(logger),
		risk.WithMetrics(e.metrics),
	}

	switch cfg.Risk.Transport {
	case config.TransportGRPC:
		scorer, err := risk.DialGRPC(cfg.Risk.GRPCAddr)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func() { scorer.Close() })
		return risk.NewOracle(scorer, opts...), nil
	case config.TransportNone:
		return risk.NewOracle(nil, opts...), nil
	default:
		return risk.NewOracle(risk.NewHTTPScorer(cfg.Risk.Endpoint, nil), opts...), nil
	}
}

package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/sim"
	"github.com/ppiankov/ztbench/internal/synth"
)

// Runner executes benchmark jobs on a bounded worker pool.
type Runner struct {
	sim     *sim.Simulator
	workers int
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the default pool size. A bench's own workers setting
// takes precedence.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner around s.
func NewRunner(s *sim.Simulator, opts ...RunnerOption) *Runner {
	r := &Runner{
		sim:     s,
		workers: runtime.NumCPU(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates every job up front, then simulates them concurrently.
// Records are returned in job order regardless of scheduling, so a bench
// with a fixed seed reproduces its metrics exactly.
func (r *Runner) Run(ctx context.Context, b *Bench) (*Result, error) {
	jobs := b.Expand()

	var errs []error
	for _, j := range jobs {
		if err := j.Scenario.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("job %d: %w", j.Index, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	workers := r.workers
	if b.Workers > 0 {
		workers = b.Workers
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Name:    b.Name,
		Seed:    b.Seed,
		Records: make([]model.ResultRecord, len(jobs)),
	}
	r.logger.Info("bench started", "run_id", res.RunID, "name", b.Name, "jobs", len(jobs), "workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := r.sim.Run(ctx, j.Scenario, synth.NewRand(j.Seed))
			if err != nil {
				return fmt.Errorf("job %d: %w", j.Index, err)
			}
			res.Records[j.Index] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Summary = Aggregate(res.Records)
	r.logger.Info("bench finished", "run_id", res.RunID, "records", len(res.Records))
	return res, nil
}

// LoadAndRun loads a bench file and runs it.
func (r *Runner) LoadAndRun(ctx context.Context, path string) (*Result, error) {
	b, err := Load(path)
	if err != nil {
		return nil, err
	}
	res, err := r.Run(ctx, b)
	if err != nil {
		return nil, err
	}
	res.File = path
	return res, nil
}

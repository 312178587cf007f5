package scenario

import "github.com/ppiankov/ztbench/internal/model"

// Expand lists the bench's jobs: every sweep combination applied to the
// base, then the explicit scenarios, each repeated. Job i runs with seed
// Seed+i.
func (b *Bench) Expand() []Job {
	var scenarios []model.ScenarioConfig
	if !b.Sweep.empty() || len(b.Scenarios) == 0 {
		scenarios = b.sweep()
	}
	scenarios = append(scenarios, b.Scenarios...)

	reps := max(b.Repetitions, 1)
	jobs := make([]Job, 0, len(scenarios)*reps)
	for _, sc := range scenarios {
		for r := range reps {
			i := len(jobs)
			jobs = append(jobs, Job{
				Index:      i,
				Repetition: r,
				Seed:       b.Seed + uint64(i),
				Scenario:   sc,
			})
		}
	}
	return jobs
}

func (b *Bench) sweep() []model.ScenarioConfig {
	out := []model.ScenarioConfig{b.Base}

	out = cross(out, b.Sweep.Variants, func(s *model.ScenarioConfig, v model.Variant) { s.Variant = v })
	out = cross(out, b.Sweep.NetworkSizes, func(s *model.ScenarioConfig, v int) { s.NetworkSize = v })
	out = cross(out, b.Sweep.MaliciousRatios, func(s *model.ScenarioConfig, v float64) { s.MaliciousRatio = v })
	out = cross(out, b.Sweep.AIThresholds, func(s *model.ScenarioConfig, v float64) { s.AIThreshold = v })
	out = cross(out, b.Sweep.Policies, func(s *model.ScenarioConfig, v model.Policy) { s.Policy = v })
	return out
}

// cross multiplies in by values, varying the last dimension fastest.
func cross[T any](in []model.ScenarioConfig, values []T, set func(*model.ScenarioConfig, T)) []model.ScenarioConfig {
	if len(values) == 0 {
		return in
	}
	out := make([]model.ScenarioConfig, 0, len(in)*len(values))
	for _, s := range in {
		for _, v := range values {
			next := s
			set(&next, v)
			out = append(out, next)
		}
	}
	return out
}

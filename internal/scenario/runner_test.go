package scenario

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/sim"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newRunner(workers int) *Runner {
	s := sim.New(nil, sim.WithClock(fixedClock{time.Unix(1700000000, 0)}))
	return NewRunner(s, WithWorkers(workers))
}

func writeBench(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sweepBench = `
name: variants
seed: 42
repetitions: 2
base:
  policy: RBAC
  risk_profile: low
sweep:
  zt_variant: ["Zero Trust Only", "Zero Trust + Blockchain", "Zero Trust + Blockchain + AI"]
  network_size: [50, 300]
`

func TestParseKeepsDefaults(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)

	assert.Equal(t, "variants", b.Name)
	assert.Equal(t, uint64(42), b.Seed)
	assert.Equal(t, model.DefaultUserID, b.Base.UserID)
	assert.Equal(t, model.DefaultMFACode, b.Base.MFACode)
	assert.Len(t, b.Sweep.Variants, 3)
}

func TestParseRejectsNegativeCounts(t *testing.T) {
	_, err := Parse([]byte("repetitions: -1\n"))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	_, err = Parse([]byte("workers: -2\n"))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestExpandCartesianProduct(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)

	jobs := b.Expand()
	require.Len(t, jobs, 3*2*2)

	for i, j := range jobs {
		assert.Equal(t, i, j.Index)
		assert.Equal(t, uint64(42+i), j.Seed)
		assert.Equal(t, i%2, j.Repetition)
	}
	assert.Equal(t, model.VariantZeroTrust, jobs[0].Scenario.Variant)
	assert.Equal(t, 50, jobs[0].Scenario.NetworkSize)
	assert.Equal(t, 300, jobs[2].Scenario.NetworkSize)
	assert.Equal(t, model.VariantZeroTrustBlockchainAI, jobs[11].Scenario.Variant)
}

func TestExpandBaseOnly(t *testing.T) {
	b := &Bench{Base: model.DefaultScenario()}
	jobs := b.Expand()
	require.Len(t, jobs, 1)
	assert.Equal(t, model.DefaultScenario(), jobs[0].Scenario)
}

func TestExpandExplicitScenariosUseDefaults(t *testing.T) {
	b, err := Parse([]byte(`
base:
  role: admin
scenarios:
  - policy: MAC
  - policy: DAC
    role: DriverA
`))
	require.NoError(t, err)

	jobs := b.Expand()
	require.Len(t, jobs, 2)
	assert.Equal(t, model.PolicyMAC, jobs[0].Scenario.Policy)
	assert.Equal(t, model.DefaultRole, jobs[0].Scenario.Role)
	assert.Equal(t, "DriverA", jobs[1].Scenario.Role)
}

func TestRunOrderedAndReproducible(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)

	serial, err := newRunner(1).Run(context.Background(), b)
	require.NoError(t, err)
	parallel, err := newRunner(8).Run(context.Background(), b)
	require.NoError(t, err)

	require.Len(t, serial.Records, 12)
	assert.Equal(t, serial.Records, parallel.Records)
	assert.Equal(t, serial.Summary, parallel.Summary)
	assert.NotEqual(t, serial.RunID, parallel.RunID)

	jobs := b.Expand()
	for i, rec := range serial.Records {
		assert.Equal(t, jobs[i].Scenario, rec.ScenarioConfig)
	}
}

func TestRunAggregatesPerGroup(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)

	res, err := newRunner(4).Run(context.Background(), b)
	require.NoError(t, err)

	require.Len(t, res.Summary, 6)
	for _, s := range res.Summary {
		assert.Equal(t, 2, s.Runs)
		// fallback risk 0.1 grants every RBAC user attempt
		assert.Equal(t, 2, s.Allowed)
		assert.Equal(t, 100.0, s.AccessSuccessRate)
		assert.GreaterOrEqual(t, s.F1, 0.0)
		assert.LessOrEqual(t, s.F1, 1.0)
	}
	assert.Equal(t, model.VariantZeroTrust, res.Summary[0].Variant)
	assert.Equal(t, 300, res.Summary[1].NetworkSize)
}

func TestRunRejectsInvalidJobs(t *testing.T) {
	b, err := Parse([]byte(`
scenarios:
  - policy: RBAC
  - network_size: 0
  - malicious_ratio: 2
`))
	require.NoError(t, err)

	_, err = newRunner(2).Run(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "job 1")
	assert.Contains(t, err.Error(), "job 2")
	assert.NotContains(t, err.Error(), "job 0")
}

func TestRunCancelled(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newRunner(2).Run(ctx, b)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAndRun(t *testing.T) {
	path := writeBench(t, sweepBench)

	res, err := newRunner(2).LoadAndRun(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.File)
	assert.Len(t, res.Records, 12)

	_, err = newRunner(2).LoadAndRun(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAggregateMeans(t *testing.T) {
	rec := func(fnr float64, allowed bool) model.ResultRecord {
		sc := model.DefaultScenario()
		sc.Variant = model.VariantZeroTrust
		return model.NewResultRecord(sc, model.MetricBundle{FNR: fnr, AvgResponseTime: 2}, allowed, 0.1)
	}

	out := Aggregate([]model.ResultRecord{rec(0.1, true), rec(0.3, false)})
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Runs)
	assert.Equal(t, 1, out[0].Allowed)
	assert.InDelta(t, 0.2, out[0].FNR, 1e-12)
	assert.InDelta(t, 2.0, out[0].AvgResponseTime, 1e-12)
}

func TestFormatText(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)
	res, err := newRunner(2).Run(context.Background(), b)
	require.NoError(t, err)

	out := FormatText(res)
	assert.True(t, strings.HasPrefix(out, "variants: 12 runs (seed 42"))
	assert.Contains(t, out, "Zero Trust + Blockchain + AI")
	assert.Contains(t, out, "12 of 12 attempts granted.")
}

func TestFormatJSON(t *testing.T) {
	b, err := Parse([]byte(sweepBench))
	require.NoError(t, err)
	res, err := newRunner(2).Run(context.Background(), b)
	require.NoError(t, err)

	out, err := FormatJSON(res)
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "`+res.RunID+`"`)
	assert.Contains(t, out, `"zt_variant": "Zero Trust Only"`)
	assert.Contains(t, out, `"gas_per_tx": 21000`)
}

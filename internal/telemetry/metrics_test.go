package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.IncrementDecision("v", "RBAC", "granted")
	m.IncrementOracle(200)
	m.ObserveResponseTime("v", time.Millisecond)
	m.IncrementLedgerFailure()
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncrementDecision("Zero Trust Only", "RBAC", "granted")
	m.IncrementDecision("Zero Trust Only", "RBAC", "granted")
	m.IncrementOracle(500)
	m.IncrementLedgerFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("Zero Trust Only", "RBAC", "granted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleResults.WithLabelValues("500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerFailures))
}

func TestIndependentInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveResponseTime("Zero Trust + Blockchain", 3*time.Millisecond)

	path := filepath.Join(t.TempDir(), "ztbench.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ztbench_response_time_seconds")
}

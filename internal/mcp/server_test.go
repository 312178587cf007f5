package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ztbench/internal/audit"
	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/sim"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Unix(1700000000, 0) }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(sim.New(nil, sim.WithClock(fixedClock{})), nil, "test", nil)
}

func ptr[T any](v T) *T { return &v }

func TestSimulateDefaults(t *testing.T) {
	s := newTestServer(t)

	result, out, err := s.handleSimulate(context.Background(), &mcpsdk.CallToolRequest{}, SimulateInput{})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, out.Allowed)
	assert.Equal(t, 0.1, out.RiskScore)
	assert.Equal(t, model.StatusFallback, out.HTTPStatus)
	assert.Equal(t, model.DefaultNetworkSize, out.NetworkSize)
	assert.Equal(t, model.GasPerTx, out.GasPerTx)
}

func TestSimulateOverrides(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleSimulate(context.Background(), &mcpsdk.CallToolRequest{}, SimulateInput{
		Policy:      ptr("MAC"),
		RiskProfile: ptr("high"),
		Variant:     ptr(string(model.VariantZeroTrustBlockchainAI)),
		NetworkSize: ptr(300),
	})
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Equal(t, 0.9, out.RiskScore)
	assert.Equal(t, string(model.VariantZeroTrustBlockchainAI), out.Variant)
	assert.Equal(t, 300, out.NetworkSize)
	assert.Equal(t, 0.0, out.AccessSuccessRate)
}

func TestSimulateWrongMFA(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleSimulate(context.Background(), &mcpsdk.CallToolRequest{}, SimulateInput{MFACode: ptr("000000")})
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Equal(t, model.StatusUnauthorized, out.HTTPStatus)
	assert.Equal(t, 1.0, out.RiskScore)
}

func TestSimulateSeedReproducible(t *testing.T) {
	s := newTestServer(t)
	in := SimulateInput{Seed: ptr(uint64(11)), Variant: ptr(string(model.VariantZeroTrust))}

	_, a, err := s.handleSimulate(context.Background(), &mcpsdk.CallToolRequest{}, in)
	require.NoError(t, err)
	_, b, err := s.handleSimulate(context.Background(), &mcpsdk.CallToolRequest{}, in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSimulateInvalidConfig(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleSimulate(context.Background(), &mcpsdk.CallToolRequest{}, SimulateInput{MaliciousRatio: ptr(1.5)})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestBenchmark(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: mcp
seed: 1
sweep:
  zt_variant: ["Zero Trust Only", "Zero Trust + Blockchain"]
`), 0644))

	_, out, err := s.handleBenchmark(context.Background(), &mcpsdk.CallToolRequest{}, BenchmarkInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "mcp", out.Name)
	assert.Equal(t, 2, out.Runs)
	assert.Len(t, out.Summary, 2)
	assert.NotEmpty(t, out.RunID)

	_, _, err = s.handleBenchmark(context.Background(), &mcpsdk.CallToolRequest{}, BenchmarkInput{})
	assert.Error(t, err)
}

func writeLedger(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	l, err := audit.Open(path)
	require.NoError(t, err)
	for i := range n {
		require.NoError(t, l.Record(audit.Entry{User: "u", Allowed: i%2 == 0, Policy: "RBAC", Risk: 0.1, Timestamp: int64(1700000000 + i)}))
	}
	require.NoError(t, l.Close())
	return path
}

func TestVerifyLedger(t *testing.T) {
	s := newTestServer(t)
	path := writeLedger(t, 3)

	result, out, err := s.handleVerifyLedger(context.Background(), &mcpsdk.CallToolRequest{}, LedgerInput{Path: path})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, out.Valid)
	assert.Equal(t, 3, out.Lines)
}

func TestVerifyLedgerTampered(t *testing.T) {
	s := newTestServer(t)
	path := writeLedger(t, 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := append([]byte(nil), data...)
	for i := range tampered {
		if tampered[i] == 'R' {
			tampered[i] = 'M'
			break
		}
	}
	require.NoError(t, os.WriteFile(path, tampered, 0600))

	result, out, err := s.handleVerifyLedger(context.Background(), &mcpsdk.CallToolRequest{}, LedgerInput{Path: path})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.False(t, out.Valid)
	assert.Equal(t, 2, out.ErrorLine)
}

func TestLedgerTail(t *testing.T) {
	s := newTestServer(t)
	path := writeLedger(t, 5)

	_, out, err := s.handleLedgerTail(context.Background(), &mcpsdk.CallToolRequest{}, LedgerInput{Path: path, N: 2})
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, int64(1700000004), out.Entries[1].Timestamp)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ztbench/internal/alert"
	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/risk"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, TransportHTTP, cfg.Risk.Transport)
	assert.Equal(t, risk.DefaultEndpoint, cfg.Risk.Endpoint)
	assert.Equal(t, risk.DefaultTimeout, cfg.Risk.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv(EnvConfig, "")
	path := writeConfig(t, `
risk:
  transport: grpc
  timeout: 500ms
ledger:
  path: /tmp/ledger.jsonl
workers: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, TransportGRPC, cfg.Risk.Transport)
	assert.Equal(t, 500*time.Millisecond, cfg.Risk.Timeout)
	assert.Equal(t, risk.DefaultEndpoint, cfg.Risk.Endpoint)
	assert.Equal(t, "/tmp/ledger.jsonl", cfg.Ledger.Path)
	assert.Equal(t, 256, cfg.Ledger.Buffer)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadEnvFallbackPath(t *testing.T) {
	path := writeConfig(t, "seed: 9\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cfg.Seed)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "risk: [unclosed\n"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("ZTBENCH_RISK_TRANSPORT", "none")
	t.Setenv("ZTBENCH_RISK_TIMEOUT", "3s")
	t.Setenv("ZTBENCH_WORKERS", "6")
	t.Setenv("ZTBENCH_SEED", "1234")
	t.Setenv("ZTBENCH_LOG_FORMAT", "json")

	cfg, err := Load(writeConfig(t, "workers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, TransportNone, cfg.Risk.Transport)
	assert.Equal(t, 3*time.Second, cfg.Risk.Timeout)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, uint64(1234), cfg.Seed)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverrideParseErrors(t *testing.T) {
	for _, key := range []string{"ZTBENCH_RISK_TIMEOUT", "ZTBENCH_WORKERS", "ZTBENCH_SEED"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(EnvConfig, "")
			t.Setenv(key, "bogus")
			_, err := Load(writeConfig(t, "{}\n"))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Risk.Transport = "carrier-pigeon"
	cfg.Risk.Timeout = 0
	cfg.Workers = -1
	cfg.Alerts = append(cfg.Alerts, alert.Config{Events: []string{alert.EventDenied}})

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "risk.transport")
	assert.Contains(t, err.Error(), "risk.timeout")
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "alerts[0].url")
}

func TestLoadAlerts(t *testing.T) {
	t.Setenv(EnvConfig, "")
	cfg, err := Load(writeConfig(t, `
alerts:
  - url: http://hooks.local/zt
    format: slack
    events: [denied, unauthenticated]
`))
	require.NoError(t, err)
	require.Len(t, cfg.Alerts, 1)
	assert.Equal(t, "slack", cfg.Alerts[0].Format)
	assert.Equal(t, []string{alert.EventDenied, alert.EventUnauthenticated}, cfg.Alerts[0].Events)
}

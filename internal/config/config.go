// Package config loads ztbench tool configuration: defaults, then an
// optional YAML file, then ZTBENCH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ztbench/internal/alert"
	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/risk"
)

// Risk transports.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
	TransportNone = "none"
)

// EnvConfig names the variable consulted when no config path is given.
const EnvConfig = "ZTBENCH_CONFIG"

// RiskConfig selects and addresses the remote scorer.
type RiskConfig struct {
	Transport string        `yaml:"transport"`
	Endpoint  string        `yaml:"endpoint"`
	GRPCAddr  string        `yaml:"grpc_addr"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LedgerConfig locates the decision ledger. An empty path disables it.
type LedgerConfig struct {
	Path   string `yaml:"path"`
	Buffer int    `yaml:"buffer"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete tool configuration.
type Config struct {
	Risk       RiskConfig     `yaml:"risk"`
	Ledger     LedgerConfig   `yaml:"ledger"`
	Log        LogConfig      `yaml:"log"`
	Alerts     []alert.Config `yaml:"alerts"`
	PolicyPath string         `yaml:"policy_path"`
	Workers    int            `yaml:"workers"`
	Seed       uint64         `yaml:"seed"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Risk: RiskConfig{
			Transport: TransportHTTP,
			Endpoint:  risk.DefaultEndpoint,
			GRPCAddr:  "127.0.0.1:5001",
			Timeout:   risk.DefaultTimeout,
		},
		Ledger: LedgerConfig{Buffer: 256},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns ~/.ztbench/config.yaml, or "" without a home dir.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ztbench", "config.yaml")
}

// Load builds the configuration. If path is empty, tries ZTBENCH_CONFIG,
// then DefaultPath. A missing file yields defaults; an unreadable or
// invalid one is an error. Environment overrides apply last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ZTBENCH_RISK_TRANSPORT", &c.Risk.Transport)
	str("ZTBENCH_RISK_ENDPOINT", &c.Risk.Endpoint)
	str("ZTBENCH_RISK_GRPC_ADDR", &c.Risk.GRPCAddr)
	str("ZTBENCH_LEDGER", &c.Ledger.Path)
	str("ZTBENCH_POLICY", &c.PolicyPath)
	str("ZTBENCH_LOG_LEVEL", &c.Log.Level)
	str("ZTBENCH_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("ZTBENCH_RISK_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ZTBENCH_RISK_TIMEOUT: %w", err)
		}
		c.Risk.Timeout = d
	}
	if v, ok := lookup("ZTBENCH_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ZTBENCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v, ok := lookup("ZTBENCH_SEED"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ZTBENCH_SEED: %w", err)
		}
		c.Seed = n
	}
	return nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Risk.Transport {
	case TransportHTTP, TransportGRPC, TransportNone:
	default:
		errs = append(errs, &model.ValidationError{Field: "risk.transport", Value: c.Risk.Transport, Reason: "must be http, grpc or none"})
	}
	if c.Risk.Timeout <= 0 {
		errs = append(errs, &model.ValidationError{Field: "risk.timeout", Value: c.Risk.Timeout, Reason: "must be positive"})
	}
	if c.Ledger.Buffer < 0 {
		errs = append(errs, &model.ValidationError{Field: "ledger.buffer", Value: c.Ledger.Buffer, Reason: "must be >= 0"})
	}
	for i, a := range c.Alerts {
		if a.URL == "" {
			errs = append(errs, &model.ValidationError{Field: fmt.Sprintf("alerts[%d].url", i), Value: a.URL, Reason: "is required"})
		}
	}
	if c.Workers < 0 {
		errs = append(errs, &model.ValidationError{Field: "workers", Value: c.Workers, Reason: "must be >= 0"})
	}
	return errors.Join(errs...)
}

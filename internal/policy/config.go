package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ceilings are the exclusive upper risk bounds under which each policy
// family grants access.
type Ceilings struct {
	RBAC float64 `yaml:"rbac"`
	ABAC float64 `yaml:"abac"`
	MAC  float64 `yaml:"mac"`
	DAC  float64 `yaml:"dac"`
}

// Config holds all configurable authorization parameters.
type Config struct {
	Ceilings           Ceilings `yaml:"ceilings"`
	RBACRole           string   `yaml:"rbac_role"`
	DACOwner           string   `yaml:"dac_owner"`
	ABACLocationPrefix string   `yaml:"abac_location_prefix"`
}

// DefaultConfig returns the built-in evaluation table.
func DefaultConfig() *Config {
	return &Config{
		Ceilings: Ceilings{
			RBAC: 0.5,
			ABAC: 0.6,
			MAC:  0.3,
			DAC:  0.7,
		},
		RBACRole:           "user",
		DACOwner:           "DriverA",
		ABACLocationPrefix: "Charger",
	}
}

// LoadConfig loads policy configuration from a YAML file.
// Empty path or a missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads policy configuration and returns its SHA-256 hash.
// The hash is computed over the raw YAML bytes on disk, or over empty input
// when defaults are used.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		return DefaultConfig(), hashBytes(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), hashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read policy config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, "", fmt.Errorf("invalid policy config %s: %w", path, err)
	}

	return cfg, hashBytes(data), nil
}

func (c *Config) validate() error {
	for name, v := range map[string]float64{
		"rbac": c.Ceilings.RBAC,
		"abac": c.Ceilings.ABAC,
		"mac":  c.Ceilings.MAC,
		"dac":  c.Ceilings.DAC,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("ceiling %s=%v outside [0,1]", name, v)
		}
	}
	return nil
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# ztbench authorization policy
#
# Each family grants when its condition holds AND risk < ceiling.
#   RBAC: role == rbac_role
#   ABAC: location starts with abac_location_prefix
#   MAC:  no identity condition
#   DAC:  role == dac_owner
# Unknown policy names are always denied.

ceilings:
  rbac: 0.5
  abac: 0.6
  mac: 0.3
  dac: 0.7

rbac_role: user
dac_owner: DriverA
abac_location_prefix: Charger
`
}

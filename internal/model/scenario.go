package model

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Scenario defaults applied to any field a caller leaves unset.
const (
	DefaultUserID         = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	DefaultRole           = "user"
	DefaultLocation       = "Charger001"
	DefaultAccessTime     = "10:00"
	DefaultNetworkSize    = 50
	DefaultMaliciousRatio = 0.3
	DefaultAIThreshold    = 0.5
	DefaultMFACode        = "123456"
)

// ScenarioConfig describes one simulated access attempt. It is immutable once
// handed to the simulator.
type ScenarioConfig struct {
	Policy         Policy      `json:"policy" yaml:"policy"`
	UserID         string      `json:"user_id" yaml:"user_id"`
	Role           string      `json:"role" yaml:"role"`
	RiskProfile    RiskProfile `json:"risk_profile" yaml:"risk_profile"`
	Location       string      `json:"location" yaml:"location"`
	MFAEnabled     bool        `json:"mfa_enabled" yaml:"mfa_enabled"`
	MFACode        string      `json:"mfa_code,omitempty" yaml:"mfa_code,omitempty"`
	AccessTime     string      `json:"access_time" yaml:"access_time"`
	Variant        Variant     `json:"zt_variant" yaml:"zt_variant"`
	NetworkSize    int         `json:"network_size" yaml:"network_size"`
	MaliciousRatio float64     `json:"malicious_ratio" yaml:"malicious_ratio"`
	AIThreshold    float64     `json:"ai_threshold" yaml:"ai_threshold"`
}

// DefaultScenario returns a scenario with every field at its documented default.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{
		Policy:         PolicyRBAC,
		UserID:         DefaultUserID,
		Role:           DefaultRole,
		RiskProfile:    ProfileLow,
		Location:       DefaultLocation,
		MFAEnabled:     true,
		MFACode:        DefaultMFACode,
		AccessTime:     DefaultAccessTime,
		Variant:        VariantUnknown,
		NetworkSize:    DefaultNetworkSize,
		MaliciousRatio: DefaultMaliciousRatio,
		AIThreshold:    DefaultAIThreshold,
	}
}

// scenarioFields breaks the Unmarshal recursion.
type scenarioFields ScenarioConfig

// UnmarshalYAML decodes over DefaultScenario so omitted keys keep defaults.
func (s *ScenarioConfig) UnmarshalYAML(value *yaml.Node) error {
	fields := scenarioFields(DefaultScenario())
	if err := value.Decode(&fields); err != nil {
		return err
	}
	*s = ScenarioConfig(fields)
	return nil
}

// UnmarshalJSON decodes over DefaultScenario so omitted keys keep defaults.
func (s *ScenarioConfig) UnmarshalJSON(data []byte) error {
	fields := scenarioFields(DefaultScenario())
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = ScenarioConfig(fields)
	return nil
}

// Credentials derives what the principal presents. The MFA code is only
// attached when MFA is enabled.
func (s ScenarioConfig) Credentials() Credentials {
	c := Credentials{User: s.UserID, Password: "test"}
	if s.MFAEnabled {
		c.MFACode = s.MFACode
	}
	return c
}

// User derives the principal under authorization.
func (s ScenarioConfig) User() User {
	return User{Username: s.UserID, Role: s.Role, RiskProfile: s.RiskProfile}
}

// Context derives the ABAC request context.
func (s ScenarioConfig) Context() Context {
	return Context{Location: s.Location}
}

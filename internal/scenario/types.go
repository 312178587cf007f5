// Package scenario runs benchmark files: a base scenario swept across
// parameter grids, repeated with derived seeds and aggregated per
// architecture and network size.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ztbench/internal/model"
)

// Sweep lists values to cross with the base scenario. An empty dimension
// keeps the base value.
type Sweep struct {
	Variants        []model.Variant `yaml:"zt_variant,omitempty" json:"zt_variant,omitempty"`
	NetworkSizes    []int           `yaml:"network_size,omitempty" json:"network_size,omitempty"`
	MaliciousRatios []float64       `yaml:"malicious_ratio,omitempty" json:"malicious_ratio,omitempty"`
	AIThresholds    []float64       `yaml:"ai_threshold,omitempty" json:"ai_threshold,omitempty"`
	Policies        []model.Policy  `yaml:"policy,omitempty" json:"policy,omitempty"`
}

func (s Sweep) empty() bool {
	return len(s.Variants) == 0 && len(s.NetworkSizes) == 0 &&
		len(s.MaliciousRatios) == 0 && len(s.AIThresholds) == 0 && len(s.Policies) == 0
}

// Bench is a benchmark file.
type Bench struct {
	Name        string `yaml:"name" json:"name"`
	Seed        uint64 `yaml:"seed" json:"seed"`
	Repetitions int    `yaml:"repetitions,omitempty" json:"repetitions,omitempty"`
	Workers     int    `yaml:"workers,omitempty" json:"workers,omitempty"`

	Base  model.ScenarioConfig `yaml:"base" json:"base"`
	Sweep Sweep                `yaml:"sweep,omitempty" json:"sweep,omitempty"`

	// Scenarios are run as written, after the sweep. Omitted fields take
	// the scenario defaults, not the base.
	Scenarios []model.ScenarioConfig `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
}

// Job is one simulator invocation.
type Job struct {
	Index      int
	Repetition int
	Seed       uint64
	Scenario   model.ScenarioConfig
}

// Summary aggregates the records of one (variant, network size) group.
type Summary struct {
	Variant     model.Variant `json:"zt_variant"`
	NetworkSize int           `json:"network_size"`
	Runs        int           `json:"runs"`
	Allowed     int           `json:"allowed"`

	FNR               float64 `json:"fnr"`
	FPR               float64 `json:"fpr"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1                float64 `json:"f1"`
	AUC               float64 `json:"auc"`
	ADR               float64 `json:"adr"`
	DetectionAccuracy float64 `json:"detection_accuracy"`
	AccessSuccessRate float64 `json:"access_success_rate"`
	Throughput        float64 `json:"throughput"`
	AvgResponseTime   float64 `json:"avg_response_time"`
}

// Result is the outcome of one benchmark run. Records are in job order.
type Result struct {
	RunID   string               `json:"run_id"`
	Name    string               `json:"name"`
	File    string               `json:"file,omitempty"`
	Seed    uint64               `json:"seed"`
	Records []model.ResultRecord `json:"records"`
	Summary []Summary            `json:"summary"`
}

// Parse decodes a benchmark file. A missing base is the default scenario.
func Parse(data []byte) (*Bench, error) {
	b := &Bench{Base: model.DefaultScenario()}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parse bench: %w", err)
	}
	if b.Repetitions < 0 {
		return nil, fmt.Errorf("%w: repetitions must be >= 0, got %d", model.ErrInvalidConfig, b.Repetitions)
	}
	if b.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0, got %d", model.ErrInvalidConfig, b.Workers)
	}
	return b, nil
}

// Load reads and parses a benchmark file.
func Load(path string) (*Bench, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bench %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

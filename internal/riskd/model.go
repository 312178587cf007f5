package riskd

import (
	"math"

	"github.com/ppiankov/ztbench/internal/risk"
)

// Model is a logistic scorer over the risk feature vector.
type Model struct {
	Weights risk.Features `yaml:"weights" json:"weights"`
	Bias    float64       `yaml:"bias" json:"bias"`
}

// DefaultModel weighs malicious traffic up and MFA and the home charger down.
// A default scenario scores below 0.1; a hostile unverified one above 0.9.
func DefaultModel() Model {
	return Model{
		Weights: risk.Features{4.0, -1.0, 0.5, -1.5, -1.5},
		Bias:    -0.5,
	}
}

// Score returns sigmoid(w·f + b), always in (0,1).
func (m Model) Score(f risk.Features) float64 {
	z := m.Bias
	for i, w := range m.Weights {
		z += w * f[i]
	}
	return 1 / (1 + math.Exp(-z))
}

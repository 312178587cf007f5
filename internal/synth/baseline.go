// Package synth derives the security and performance metric bundle for one
// simulated access attempt.
//
// Every random draw comes from the caller's *rand.Rand, in a fixed order, so a
// seeded source replays bit-identical bundles.
package synth

import (
	"math/rand/v2"

	"github.com/ppiankov/ztbench/internal/model"
)

// Baseline is the detector quality before the access outcome is applied.
type Baseline struct {
	FNR      float64
	FPR      float64
	Accuracy float64
}

// variantModel is the analytic baseline for one architecture.
type variantModel struct {
	fnr0, fnrPerNode, fnrPerAI, fnrNoise, fnrFloor float64
	fpr0, fprPerNode, fprPerAI, fprNoise, fprFloor float64
	// accuracy = 1 - accWeight*(fnr+fpr)
	accWeight float64
}

var variantModels = map[model.Variant]variantModel{
	model.VariantZeroTrust: {
		fnr0: 0.15, fnrPerNode: 8e-5, fnrNoise: 0.01, fnrFloor: 0.03,
		fpr0: 0.10, fprPerNode: 5e-5, fprNoise: 0.01, fprFloor: 0.01,
		accWeight: 0.5,
	},
	model.VariantZeroTrustBlockchain: {
		fnr0: 0.10, fnrPerNode: 6e-5, fnrNoise: 0.008, fnrFloor: 0.02,
		fpr0: 0.07, fprPerNode: 4e-5, fprNoise: 0.008, fprFloor: 0.008,
		accWeight: 0.45,
	},
	model.VariantZeroTrustBlockchainAI: {
		fnr0: 0.06, fnrPerNode: 4e-5, fnrPerAI: 0.03, fnrNoise: 0.006, fnrFloor: 0.01,
		fpr0: 0.04, fprPerNode: 3e-5, fprPerAI: 0.01, fprNoise: 0.005, fprFloor: 0.005,
		accWeight: 0.38,
	},
}

// Unknown variants get a fixed, noise-free baseline.
var unknownBaseline = Baseline{FNR: 0.12, FPR: 0.08, Accuracy: 0.85}

// Malicious-ratio penalty and the caps it may not push past.
const (
	fnrPenaltyPerRatio = 0.05
	fprPenaltyPerRatio = 0.03
	fnrCap             = 0.25
	fprCap             = 0.20
)

// NewBaseline computes the variant baseline for the given network. Draws two
// values from rng for known variants and none otherwise.
func NewBaseline(rng *rand.Rand, v model.Variant, networkSize int, aiThreshold float64) Baseline {
	m, ok := variantModels[v]
	if !ok {
		return unknownBaseline
	}
	n := float64(networkSize)
	fnr := max(m.fnr0-m.fnrPerNode*n-m.fnrPerAI*aiThreshold+uniform(rng, m.fnrNoise), m.fnrFloor)
	fpr := max(m.fpr0-m.fprPerNode*n-m.fprPerAI*aiThreshold+uniform(rng, m.fprNoise), m.fprFloor)
	return Baseline{
		FNR:      fnr,
		FPR:      fpr,
		Accuracy: 1 - m.accWeight*(fnr+fpr),
	}
}

// Penalize raises error rates with the malicious-actor ratio, capped.
// Accuracy keeps the unpenalized value.
func (b Baseline) Penalize(maliciousRatio float64) Baseline {
	b.FNR = min(b.FNR+fnrPenaltyPerRatio*maliciousRatio, fnrCap)
	b.FPR = min(b.FPR+fprPenaltyPerRatio*maliciousRatio, fprCap)
	return b
}

// uniform draws from U(-half, +half).
func uniform(rng *rand.Rand, half float64) float64 {
	return (rng.Float64()*2 - 1) * half
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// NewRand returns a PCG-backed source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ztbench/internal/model"
)

var allVariants = []model.Variant{
	model.VariantZeroTrust,
	model.VariantZeroTrustBlockchain,
	model.VariantZeroTrustBlockchainAI,
	model.VariantUnknown,
}

type outcome struct {
	name          string
	authenticated bool
	allowed       bool
}

var outcomes = []outcome{
	{"granted", true, true},
	{"denied", true, false},
	{"unauthenticated", false, false},
}

func input(v model.Variant, o outcome) Input {
	return Input{
		Variant:        v,
		NetworkSize:    50,
		MaliciousRatio: 0.3,
		AIThreshold:    0.5,
		Authenticated:  o.authenticated,
		Allowed:        o.allowed,
		HTTPStatus:     model.StatusOK,
		ResponseTime:   0.004,
	}
}

func TestBundleBoundsAcrossInputs(t *testing.T) {
	rng := NewRand(7)
	sizes := []int{1, 50, 500, 5000, 100000}
	ratios := []float64{0, 0.3, 1}
	thresholds := []float64{0, 0.5, 1}

	for _, v := range allVariants {
		for _, o := range outcomes {
			for _, size := range sizes {
				for _, ratio := range ratios {
					for _, th := range thresholds {
						in := input(v, o)
						in.NetworkSize, in.MaliciousRatio, in.AIThreshold = size, ratio, th
						b := Synthesize(rng, in)

						for name, val := range map[string]float64{
							"fnr": b.FNR, "fpr": b.FPR, "adr": b.ADR, "precision": b.Precision,
							"recall": b.Recall, "f1": b.F1, "auc": b.AUC,
						} {
							require.GreaterOrEqual(t, val, 0.0, "%s %v", name, in)
							require.LessOrEqual(t, val, 1.0, "%s %v", name, in)
						}
						require.GreaterOrEqual(t, b.DetectionAccuracy, 0.0)
						require.LessOrEqual(t, b.DetectionAccuracy, 100.0)
						require.LessOrEqual(t, b.FNR, fnrCap+degradeFNR+1e-12)
						require.LessOrEqual(t, b.FPR, fprCap+degradeFPR+1e-12)

						if b.Precision+b.Recall > 0 {
							require.InDelta(t, F1(b.Precision, b.Recall), b.F1, 1e-12)
						}
					}
				}
			}
		}
	}
}

func TestAccessSuccessRateMatchesOutcome(t *testing.T) {
	rng := NewRand(1)
	for _, v := range allVariants {
		for _, o := range outcomes {
			b := Synthesize(rng, input(v, o))
			if o.allowed {
				assert.Equal(t, 100.0, b.AccessSuccessRate)
			} else {
				assert.Equal(t, 0.0, b.AccessSuccessRate)
			}
		}
	}
}

func TestStatusByOutcome(t *testing.T) {
	rng := NewRand(1)
	in := input(model.VariantZeroTrust, outcomes[2])
	assert.Equal(t, model.StatusUnauthorized, Synthesize(rng, in).HTTPStatus)

	in = input(model.VariantZeroTrust, outcomes[1])
	in.HTTPStatus = model.StatusFallback
	assert.Equal(t, model.StatusFallback, Synthesize(rng, in).HTTPStatus)

	in = input(model.VariantZeroTrust, outcomes[0])
	assert.Equal(t, model.StatusOK, Synthesize(rng, in).HTTPStatus)
}

func TestOperationalMetrics(t *testing.T) {
	b := Synthesize(NewRand(3), input(model.VariantZeroTrustBlockchain, outcomes[0]))
	assert.InDelta(t, 0.004, b.ResponseTime, 1e-15)
	assert.InDelta(t, 4.0, b.AvgResponseTime, 1e-9)
	assert.InDelta(t, 0.8, b.PolicyEvalTime, 1e-9)
	assert.InDelta(t, 0.4, b.BlockchainLoggingTime, 1e-9)
	assert.Equal(t, 21000, b.GasPerTx)
	assert.Equal(t, 1/0.004, b.Throughput)

	in := input(model.VariantZeroTrustBlockchain, outcomes[0])
	in.ResponseTime = 0
	b = Synthesize(NewRand(3), in)
	assert.Equal(t, 0.0, b.Throughput)
	assert.Equal(t, 0.0, b.AvgResponseTime)
}

func TestSameSeedBitIdentical(t *testing.T) {
	for _, v := range allVariants {
		for _, o := range outcomes {
			a := Synthesize(NewRand(42), input(v, o))
			b := Synthesize(NewRand(42), input(v, o))
			assert.Equal(t, a, b)
		}
	}
}

func TestDifferentSeedsStayWithinNoiseBounds(t *testing.T) {
	in := input(model.VariantZeroTrust, outcomes[0])
	a := Synthesize(NewRand(1), in)
	b := Synthesize(NewRand(2), in)

	assert.NotEqual(t, a, b)
	// baseline ±0.01 plus granted ±0.005 on each side
	assert.InDelta(t, a.FNR, b.FNR, 2*(0.01+grantedRateNoise))
	assert.InDelta(t, a.DetectionAccuracy, b.DetectionAccuracy, 2*(accuracyNoise+100*0.5*0.02))
	assert.Equal(t, a.GasPerTx, b.GasPerTx)
	assert.Equal(t, a.AccessSuccessRate, b.AccessSuccessRate)
}

func TestBaselineImprovesWithNetworkSize(t *testing.T) {
	for _, v := range model.Variants {
		small := NewBaseline(NewRand(5), v, 50, 0.5)
		large := NewBaseline(NewRand(5), v, 1000, 0.5)
		assert.Less(t, large.FNR, small.FNR, v)
		assert.Less(t, large.FPR, small.FPR, v)
		assert.Greater(t, large.Accuracy, small.Accuracy, v)
	}
}

func TestBaselineFloors(t *testing.T) {
	floors := map[model.Variant][2]float64{
		model.VariantZeroTrust:             {0.03, 0.01},
		model.VariantZeroTrustBlockchain:   {0.02, 0.008},
		model.VariantZeroTrustBlockchainAI: {0.01, 0.005},
	}
	for v, f := range floors {
		b := NewBaseline(NewRand(9), v, 1_000_000, 1)
		assert.Equal(t, f[0], b.FNR, v)
		assert.Equal(t, f[1], b.FPR, v)
	}
}

func TestAIThresholdLowersAIVariantErrors(t *testing.T) {
	lo := NewBaseline(NewRand(4), model.VariantZeroTrustBlockchainAI, 100, 0)
	hi := NewBaseline(NewRand(4), model.VariantZeroTrustBlockchainAI, 100, 1)
	assert.InDelta(t, 0.03, lo.FNR-hi.FNR, 1e-12)
	assert.InDelta(t, 0.01, lo.FPR-hi.FPR, 1e-12)
}

func TestUnknownVariantIsNoiseFree(t *testing.T) {
	a := NewBaseline(NewRand(1), "Quantum Mesh", 10, 0.2)
	b := NewBaseline(NewRand(99), "Quantum Mesh", 5000, 0.9)
	assert.Equal(t, unknownBaseline, a)
	assert.Equal(t, a, b)
}

func TestPenaltyCaps(t *testing.T) {
	b := Baseline{FNR: 0.2, FPR: 0.15, Accuracy: 0.8}.Penalize(10)
	assert.Equal(t, fnrCap, b.FNR)
	assert.Equal(t, fprCap, b.FPR)
	assert.Equal(t, 0.8, b.Accuracy)

	b = unknownBaseline.Penalize(0.5)
	assert.InDelta(t, 0.145, b.FNR, 1e-12)
	assert.InDelta(t, 0.095, b.FPR, 1e-12)
}

func TestDeniedIsDegradedRelativeToGranted(t *testing.T) {
	// Unknown variant keeps the baseline fixed so branches are comparable.
	granted := Synthesize(NewRand(11), input(model.VariantUnknown, outcomes[0]))
	denied := Synthesize(NewRand(11), input(model.VariantUnknown, outcomes[1]))
	unauth := Synthesize(NewRand(11), input(model.VariantUnknown, outcomes[2]))

	base := unknownBaseline.Penalize(0.3)
	assert.InDelta(t, base.FNR+degradeFNR, denied.FNR, 1e-12)
	assert.InDelta(t, base.FPR+degradeFPR, denied.FPR, 1e-12)
	assert.InDelta(t, base.FNR+degradeFNR, unauth.FNR, 1e-12)
	assert.InDelta(t, (base.Accuracy-degradeAccuracy)*100, unauth.DetectionAccuracy, 1e-9)

	// Same seed, same classifier draws: degraded by exactly the fixed step.
	assert.InDelta(t, granted.Precision-degradeClassifier, denied.Precision, 1e-12)
	assert.InDelta(t, granted.Recall-degradeClassifier, unauth.Recall, 1e-12)
	assert.InDelta(t, granted.AUC-degradeClassifier, denied.AUC, 1e-12)
	assert.InDelta(t, granted.ADR-degradeClassifier, denied.ADR, 1e-12)
}

func TestUniformRange(t *testing.T) {
	rng := NewRand(0)
	for i := 0; i < 10000; i++ {
		u := uniform(rng, 0.01)
		require.GreaterOrEqual(t, u, -0.01)
		require.Less(t, u, 0.01)
	}
}

package synth

import (
	"math/rand/v2"

	"github.com/ppiankov/ztbench/internal/model"
)

// Noise half-widths.
const (
	classifierNoise  = 0.01
	grantedRateNoise = 0.005
	accuracyNoise    = 2.0
)

// Fixed degradation applied when access is not granted.
const (
	degradeFNR        = 0.03
	degradeFPR        = 0.02
	degradeAccuracy   = 0.05
	degradeClassifier = 0.03
)

// f1Epsilon guards the harmonic mean denominator.
const f1Epsilon = 1e-6

// Input is everything the model needs for one attempt.
type Input struct {
	Variant        model.Variant
	NetworkSize    int
	MaliciousRatio float64
	AIThreshold    float64
	Authenticated  bool
	Allowed        bool
	// HTTPStatus is the risk oracle outcome; ignored when not authenticated.
	HTTPStatus int
	// ResponseTime is the measured decision latency in seconds.
	ResponseTime float64
}

// Classifier holds the derived detector metrics.
type Classifier struct {
	Precision float64
	Recall    float64
	F1        float64
	AUC       float64
	ADR       float64
}

// NewClassifier derives classifier metrics from a penalized baseline.
// Draws four values from rng.
func NewClassifier(rng *rand.Rand, b Baseline) Classifier {
	precision := 1 - b.FPR + uniform(rng, classifierNoise)
	recall := 1 - b.FNR + uniform(rng, classifierNoise)
	auc := 1 - 0.5*(b.FNR+b.FPR) + uniform(rng, classifierNoise)
	adr := 1 - b.FNR + uniform(rng, classifierNoise)
	return Classifier{
		Precision: precision,
		Recall:    recall,
		F1:        F1(precision, recall),
		AUC:       auc,
		ADR:       adr,
	}
}

// F1 is the guarded harmonic mean of precision and recall.
func F1(precision, recall float64) float64 {
	return 2 * precision * recall / (precision + recall + f1Epsilon)
}

// Synthesize builds the complete metric bundle. The draw order is fixed:
// baseline, classifier, then the outcome branch.
func Synthesize(rng *rand.Rand, in Input) model.MetricBundle {
	base := NewBaseline(rng, in.Variant, in.NetworkSize, in.AIThreshold).Penalize(in.MaliciousRatio)
	cls := NewClassifier(rng, base)

	var (
		fnr, fpr, accuracy float64
		success            float64
		status             = in.HTTPStatus
	)

	switch {
	case !in.Authenticated:
		status = model.StatusUnauthorized
		fnr = base.FNR + degradeFNR
		fpr = base.FPR + degradeFPR
		accuracy = (base.Accuracy - degradeAccuracy) * 100
		cls = cls.degrade()

	case !in.Allowed:
		fnr = base.FNR + degradeFNR
		fpr = base.FPR + degradeFPR
		accuracy = (base.Accuracy-degradeAccuracy)*100 + uniform(rng, accuracyNoise)
		cls = cls.degrade()

	default:
		success = 100
		accuracy = base.Accuracy*100 + uniform(rng, accuracyNoise)
		fpr = base.FPR + uniform(rng, grantedRateNoise)
		fnr = base.FNR + uniform(rng, grantedRateNoise)
	}

	cls = cls.clamp()
	rt := max(in.ResponseTime, 0)
	avg := rt * 1000

	return model.MetricBundle{
		ResponseTime:          rt,
		HTTPStatus:            status,
		AvgResponseTime:       avg,
		PolicyEvalTime:        avg * 0.2,
		BlockchainLoggingTime: avg * 0.1,
		GasPerTx:              model.GasPerTx,
		DetectionAccuracy:     clamp(accuracy, 0, 100),
		AccessSuccessRate:     success,
		Throughput:            throughput(rt),
		FPR:                   clamp01(fpr),
		FNR:                   clamp01(fnr),
		ADR:                   cls.ADR,
		Precision:             cls.Precision,
		Recall:                cls.Recall,
		F1:                    cls.F1,
		AUC:                   cls.AUC,
		AIThreshold:           in.AIThreshold,
		NetworkSize:           in.NetworkSize,
		Variant:               in.Variant,
	}
}

func (c Classifier) degrade() Classifier {
	return Classifier{
		Precision: c.Precision - degradeClassifier,
		Recall:    c.Recall - degradeClassifier,
		AUC:       c.AUC - degradeClassifier,
		ADR:       c.ADR - degradeClassifier,
	}
}

// clamp bounds every rate and recomputes F1 from the bounded inputs so the
// harmonic-mean relation holds for every bundle.
func (c Classifier) clamp() Classifier {
	p, r := clamp01(c.Precision), clamp01(c.Recall)
	return Classifier{
		Precision: p,
		Recall:    r,
		F1:        clamp01(F1(p, r)),
		AUC:       clamp01(c.AUC),
		ADR:       clamp01(c.ADR),
	}
}

func throughput(rt float64) float64 {
	if rt > 0 {
		return 1 / rt
	}
	return 0
}

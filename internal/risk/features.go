package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/ztbench/internal/model"
)

// FeatureWidth is the fixed length of every feature vector.
const FeatureWidth = 10

// Features is the vector sent to the scoring service:
// [malicious_ratio, ai_threshold, hour/24, location_id, mfa, 0...].
type Features [FeatureWidth]float64

// ErrMalformedFeatures is returned when a wire vector cannot be decoded.
var ErrMalformedFeatures = errors.New("malformed feature vector")

// homeCharger is the location that sets the location indicator.
const homeCharger = "Charger001"

// BuildFeatures derives the feature vector from a scenario.
func BuildFeatures(s model.ScenarioConfig) (Features, error) {
	hour, err := model.ParseHour(s.AccessTime)
	if err != nil {
		return Features{}, fmt.Errorf("access_time %q: %w", s.AccessTime, err)
	}

	var f Features
	f[0] = s.MaliciousRatio
	f[1] = s.AIThreshold
	f[2] = float64(hour) / 24
	f[3] = indicator(strings.Contains(s.Location, homeCharger))
	f[4] = indicator(s.MFAEnabled)
	return f, nil
}

// Slice returns the vector as a slice for wire encoding.
func (f Features) Slice() []float64 {
	out := make([]float64, FeatureWidth)
	copy(out, f[:])
	return out
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FeaturesFromSlice copies a wire vector. Short vectors are zero-padded;
// longer ones are rejected.
func FeaturesFromSlice(values []float64) (Features, error) {
	var f Features
	if len(values) > FeatureWidth {
		return f, fmt.Errorf("%w: %d features, want at most %d", ErrMalformedFeatures, len(values), FeatureWidth)
	}
	copy(f[:], values)
	return f, nil
}

package risk

import "github.com/ppiankov/ztbench/internal/model"

// Fallback returns the deterministic profile-keyed score used whenever the
// remote scorer cannot answer.
func Fallback(profile model.RiskProfile) float64 {
	switch profile {
	case model.ProfileHigh:
		return 0.9
	case model.ProfileAdmin:
		return 0.2
	default:
		return 0.1
	}
}

package policy

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ztbench/internal/model"
)

// Result is an authorization outcome with a human-readable reason.
type Result struct {
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason"`
	PolicyID string `json:"policy_id"`
}

// Evaluate applies the named policy family to the user, risk and context.
// Stateless and deterministic. Fail-closed: unknown policy → deny.
func Evaluate(user model.User, risk float64, p model.Policy, ctx model.Context, cfg *Config) Result {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch p {
	case model.PolicyRBAC:
		if user.Role != cfg.RBACRole {
			return deny(p, "role %q is not %q", user.Role, cfg.RBACRole)
		}
		return underCeiling(p, risk, cfg.Ceilings.RBAC)

	case model.PolicyABAC:
		if !strings.HasPrefix(ctx.Location, cfg.ABACLocationPrefix) {
			return deny(p, "location %q outside %s*", ctx.Location, cfg.ABACLocationPrefix)
		}
		return underCeiling(p, risk, cfg.Ceilings.ABAC)

	case model.PolicyMAC:
		return underCeiling(p, risk, cfg.Ceilings.MAC)

	case model.PolicyDAC:
		if user.Role != cfg.DACOwner {
			return deny(p, "role %q is not owner %q", user.Role, cfg.DACOwner)
		}
		return underCeiling(p, risk, cfg.Ceilings.DAC)
	}

	return Result{
		Allowed:  false,
		Reason:   fmt.Sprintf("unknown policy %q", p),
		PolicyID: "failclosed.unknown_policy",
	}
}

// Authorize is Evaluate reduced to the grant decision.
func Authorize(user model.User, risk float64, p model.Policy, ctx model.Context, cfg *Config) bool {
	return Evaluate(user, risk, p, ctx, cfg).Allowed
}

func underCeiling(p model.Policy, risk, ceiling float64) Result {
	if risk < ceiling {
		return Result{
			Allowed:  true,
			Reason:   fmt.Sprintf("risk %.3f below %s ceiling %.2f", risk, p, ceiling),
			PolicyID: policyID(p, "grant"),
		}
	}
	return Result{
		Allowed:  false,
		Reason:   fmt.Sprintf("risk %.3f at or above %s ceiling %.2f", risk, p, ceiling),
		PolicyID: policyID(p, "risk"),
	}
}

func deny(p model.Policy, format string, args ...any) Result {
	return Result{
		Allowed:  false,
		Reason:   fmt.Sprintf(format, args...),
		PolicyID: policyID(p, "identity"),
	}
}

func policyID(p model.Policy, outcome string) string {
	return strings.ToLower(string(p)) + "." + outcome
}

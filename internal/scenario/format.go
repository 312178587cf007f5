package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders a run summary as human-readable text.
func FormatText(res *Result) string {
	var b strings.Builder

	name := res.Name
	if name == "" {
		name = "bench"
	}
	fmt.Fprintf(&b, "%s: %d run", name, len(res.Records))
	if len(res.Records) != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, " (seed %d, run %s)\n\n", res.Seed, res.RunID)

	fmt.Fprintf(&b, "  %-30s %6s %7s %7s %7s %7s %7s %8s %8s\n",
		"VARIANT", "NODES", "ALLOW", "FNR", "FPR", "F1", "AUC", "ACC%", "RT(ms)")
	for _, s := range res.Summary {
		variant := string(s.Variant)
		if len(variant) > 30 {
			variant = variant[:27] + "..."
		}
		fmt.Fprintf(&b, "  %-30s %6d %3d/%-3d %7.4f %7.4f %7.4f %7.4f %8.2f %8.3f\n",
			variant, s.NetworkSize, s.Allowed, s.Runs,
			s.FNR, s.FPR, s.F1, s.AUC, s.DetectionAccuracy, s.AvgResponseTime)
	}

	allowed := 0
	for _, r := range res.Records {
		if r.Allowed {
			allowed++
		}
	}
	fmt.Fprintf(&b, "\n%d of %d attempts granted.\n", allowed, len(res.Records))
	return b.String()
}

// FormatJSON renders a run result as JSON.
func FormatJSON(res *Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}

package scenario

import "github.com/ppiankov/ztbench/internal/model"

type groupKey struct {
	variant model.Variant
	size    int
}

// Aggregate averages records per (variant, network size), in order of
// first appearance.
func Aggregate(records []model.ResultRecord) []Summary {
	var (
		order []groupKey
		sums  = map[groupKey]*Summary{}
	)

	for _, rec := range records {
		k := groupKey{rec.ScenarioConfig.Variant, rec.ScenarioConfig.NetworkSize}
		s, ok := sums[k]
		if !ok {
			s = &Summary{Variant: k.variant, NetworkSize: k.size}
			sums[k] = s
			order = append(order, k)
		}
		s.Runs++
		if rec.Allowed {
			s.Allowed++
		}
		m := rec.MetricBundle
		s.FNR += m.FNR
		s.FPR += m.FPR
		s.Precision += m.Precision
		s.Recall += m.Recall
		s.F1 += m.F1
		s.AUC += m.AUC
		s.ADR += m.ADR
		s.DetectionAccuracy += m.DetectionAccuracy
		s.AccessSuccessRate += m.AccessSuccessRate
		s.Throughput += m.Throughput
		s.AvgResponseTime += m.AvgResponseTime
	}

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		s := sums[k]
		n := float64(s.Runs)
		s.FNR /= n
		s.FPR /= n
		s.Precision /= n
		s.Recall /= n
		s.F1 /= n
		s.AUC /= n
		s.ADR /= n
		s.DetectionAccuracy /= n
		s.AccessSuccessRate /= n
		s.Throughput /= n
		s.AvgResponseTime /= n
		out = append(out, *s)
	}
	return out
}

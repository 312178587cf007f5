package model

import "encoding/json"

// GasPerTx is the fixed fee unit charged per ledger transaction.
const GasPerTx = 21000

// MetricBundle is the synthesized security/performance measurement for one
// access attempt. Rates are fractions in [0,1]; DetectionAccuracy and
// AccessSuccessRate are percentages.
type MetricBundle struct {
	ResponseTime          float64 `json:"response_time"`
	HTTPStatus            int     `json:"http_status"`
	AvgResponseTime       float64 `json:"avg_response_time"`
	PolicyEvalTime        float64 `json:"policy_eval_time"`
	BlockchainLoggingTime float64 `json:"blockchain_logging_time"`
	GasPerTx              int     `json:"gas_per_tx"`
	DetectionAccuracy     float64 `json:"detection_accuracy"`
	AccessSuccessRate     float64 `json:"access_success_rate"`
	Throughput            float64 `json:"throughput"`
	FPR                   float64 `json:"fpr"`
	FNR                   float64 `json:"fnr"`
	ADR                   float64 `json:"adr"`
	Precision             float64 `json:"precision"`
	Recall                float64 `json:"recall"`
	F1                    float64 `json:"f1"`
	AUC                   float64 `json:"auc"`

	// Echoed inputs. A ResultRecord takes these from its scenario.
	AIThreshold float64 `json:"-"`
	NetworkSize int     `json:"-"`
	Variant     Variant `json:"-"`
}

// ResultRecord is the scenario merged with its metrics and decision. It
// marshals to a single flat JSON object.
type ResultRecord struct {
	ScenarioConfig
	MetricBundle
	Allowed   bool    `json:"allowed"`
	RiskScore float64 `json:"risk_score"`
}

// UnmarshalJSON decodes a flat record. ScenarioConfig's own decoder would
// otherwise be promoted and drop the metric fields.
func (r *ResultRecord) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.ScenarioConfig); err != nil {
		return err
	}
	var rest struct {
		MetricBundle
		Allowed   bool    `json:"allowed"`
		RiskScore float64 `json:"risk_score"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	r.MetricBundle = rest.MetricBundle
	r.MetricBundle.AIThreshold = r.ScenarioConfig.AIThreshold
	r.MetricBundle.NetworkSize = r.ScenarioConfig.NetworkSize
	r.MetricBundle.Variant = r.ScenarioConfig.Variant
	r.Allowed = rest.Allowed
	r.RiskScore = rest.RiskScore
	return nil
}

// NewResultRecord merges a scenario with its outcome. Echoed parameters come
// from the scenario; computed metrics are never overridden.
func NewResultRecord(s ScenarioConfig, m MetricBundle, allowed bool, risk float64) ResultRecord {
	m.AIThreshold = s.AIThreshold
	m.NetworkSize = s.NetworkSize
	m.Variant = s.Variant
	return ResultRecord{
		ScenarioConfig: s,
		MetricBundle:   m,
		Allowed:        allowed,
		RiskScore:      risk,
	}
}

package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/ztbench/internal/audit"
	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/scenario"
	"github.com/ppiankov/ztbench/internal/synth"
)

// --- Input/Output types ---

// SimulateInput defines parameters for the ztbench_simulate tool.
type SimulateInput struct {
	Policy         *string  `json:"policy,omitempty" jsonschema:"RBAC, ABAC, MAC or DAC"`
	UserID         *string  `json:"user_id,omitempty" jsonschema:"principal identifier"`
	Role           *string  `json:"role,omitempty" jsonschema:"principal role (user, admin, DriverA)"`
	RiskProfile    *string  `json:"risk_profile,omitempty" jsonschema:"low, high or admin; keys the fallback risk score"`
	Location       *string  `json:"location,omitempty" jsonschema:"access location, e.g. Charger001"`
	MFAEnabled     *bool    `json:"mfa_enabled,omitempty" jsonschema:"whether an MFA code is presented"`
	MFACode        *string  `json:"mfa_code,omitempty" jsonschema:"MFA code presented when MFA is enabled"`
	AccessTime     *string  `json:"access_time,omitempty" jsonschema:"access time as HH:MM"`
	Variant        *string  `json:"zt_variant,omitempty" jsonschema:"Zero Trust Only, Zero Trust + Blockchain, or Zero Trust + Blockchain + AI"`
	NetworkSize    *int     `json:"network_size,omitempty" jsonschema:"number of network nodes, positive"`
	MaliciousRatio *float64 `json:"malicious_ratio,omitempty" jsonschema:"fraction of malicious traffic in [0,1]"`
	AIThreshold    *float64 `json:"ai_threshold,omitempty" jsonschema:"AI detector threshold in [0,1]"`
	Seed           *uint64  `json:"seed,omitempty" jsonschema:"random seed; same seed gives the same metrics"`
}

// SimulateOutput is the decision and metrics of one attempt.
type SimulateOutput struct {
	Allowed           bool    `json:"allowed"`
	RiskScore         float64 `json:"risk_score"`
	HTTPStatus        int     `json:"http_status"`
	Variant           string  `json:"zt_variant"`
	NetworkSize       int     `json:"network_size"`
	ResponseTime      float64 `json:"response_time"`
	DetectionAccuracy float64 `json:"detection_accuracy"`
	AccessSuccessRate float64 `json:"access_success_rate"`
	Throughput        float64 `json:"throughput"`
	FPR               float64 `json:"fpr"`
	FNR               float64 `json:"fnr"`
	ADR               float64 `json:"adr"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1                float64 `json:"f1"`
	AUC               float64 `json:"auc"`
	GasPerTx          int     `json:"gas_per_tx"`
}

// BenchmarkInput defines parameters for the ztbench_benchmark tool.
type BenchmarkInput struct {
	Path string `json:"path" jsonschema:"path to a benchmark YAML file"`
}

// BenchmarkOutput summarizes a benchmark run.
type BenchmarkOutput struct {
	RunID   string             `json:"run_id"`
	Name    string             `json:"name"`
	Runs    int                `json:"runs"`
	Summary []scenario.Summary `json:"summary"`
}

// LedgerInput defines parameters for the ledger tools.
type LedgerInput struct {
	Path string `json:"path" jsonschema:"path to a decision ledger (JSONL)"`
	N    int    `json:"n,omitempty" jsonschema:"number of records for ledger_tail (default 10)"`
}

// LedgerTailOutput lists recent ledger records.
type LedgerTailOutput struct {
	Entries []audit.Entry `json:"entries"`
}

// --- Handlers ---

func (s *Server) handleSimulate(ctx context.Context, req *mcpsdk.CallToolRequest, input SimulateInput) (*mcpsdk.CallToolResult, SimulateOutput, error) {
	sc := input.scenario()

	var seed uint64
	if input.Seed != nil {
		seed = *input.Seed
	}
	rec, err := s.sim.Run(ctx, sc, synth.NewRand(seed))
	if err != nil {
		return nil, SimulateOutput{}, err
	}
	s.logger.Debug("mcp simulate", "policy", sc.Policy, "zt_variant", sc.Variant, "allowed", rec.Allowed)
	return nil, toSimulateOutput(rec), nil
}

func (in SimulateInput) scenario() model.ScenarioConfig {
	sc := model.DefaultScenario()
	set(&sc.UserID, in.UserID)
	set(&sc.Role, in.Role)
	set(&sc.Location, in.Location)
	set(&sc.MFAEnabled, in.MFAEnabled)
	set(&sc.MFACode, in.MFACode)
	set(&sc.AccessTime, in.AccessTime)
	set(&sc.NetworkSize, in.NetworkSize)
	set(&sc.MaliciousRatio, in.MaliciousRatio)
	set(&sc.AIThreshold, in.AIThreshold)
	if in.Policy != nil {
		sc.Policy = model.Policy(*in.Policy)
	}
	if in.RiskProfile != nil {
		sc.RiskProfile = model.RiskProfile(*in.RiskProfile)
	}
	if in.Variant != nil {
		sc.Variant = model.Variant(*in.Variant)
	}
	return sc
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func toSimulateOutput(r model.ResultRecord) SimulateOutput {
	m := r.MetricBundle
	return SimulateOutput{
		Allowed:           r.Allowed,
		RiskScore:         r.RiskScore,
		HTTPStatus:        m.HTTPStatus,
		Variant:           string(r.ScenarioConfig.Variant),
		NetworkSize:       r.ScenarioConfig.NetworkSize,
		ResponseTime:      m.ResponseTime,
		DetectionAccuracy: m.DetectionAccuracy,
		AccessSuccessRate: m.AccessSuccessRate,
		Throughput:        m.Throughput,
		FPR:               m.FPR,
		FNR:               m.FNR,
		ADR:               m.ADR,
		Precision:         m.Precision,
		Recall:            m.Recall,
		F1:                m.F1,
		AUC:               m.AUC,
		GasPerTx:          m.GasPerTx,
	}
}

func (s *Server) handleBenchmark(ctx context.Context, req *mcpsdk.CallToolRequest, input BenchmarkInput) (*mcpsdk.CallToolResult, BenchmarkOutput, error) {
	if input.Path == "" {
		return nil, BenchmarkOutput{}, fmt.Errorf("path is required")
	}
	res, err := s.runner.LoadAndRun(ctx, input.Path)
	if err != nil {
		return nil, BenchmarkOutput{}, err
	}
	return nil, BenchmarkOutput{
		RunID:   res.RunID,
		Name:    res.Name,
		Runs:    len(res.Records),
		Summary: res.Summary,
	}, nil
}

func (s *Server) handleVerifyLedger(ctx context.Context, req *mcpsdk.CallToolRequest, input LedgerInput) (*mcpsdk.CallToolResult, audit.VerifyResult, error) {
	if input.Path == "" {
		return nil, audit.VerifyResult{}, fmt.Errorf("path is required")
	}
	result := audit.Verify(input.Path)
	if !result.Valid {
		return &mcpsdk.CallToolResult{IsError: true}, result, nil
	}
	return nil, result, nil
}

func (s *Server) handleLedgerTail(ctx context.Context, req *mcpsdk.CallToolRequest, input LedgerInput) (*mcpsdk.CallToolResult, LedgerTailOutput, error) {
	if input.Path == "" {
		return nil, LedgerTailOutput{}, fmt.Errorf("path is required")
	}
	n := input.N
	if n <= 0 {
		n = 10
	}
	entries, err := audit.Tail(input.Path, n)
	if err != nil {
		return nil, LedgerTailOutput{}, err
	}
	return nil, LedgerTailOutput{Entries: entries}, nil
}

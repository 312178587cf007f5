package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/synth"
)

var (
	simScenarioFile string
	simSeed         uint64
	simJSON         bool
	simFlags        model.ScenarioConfig
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	f := simulateCmd.Flags()
	def := model.DefaultScenario()

	f.StringVarP(&simScenarioFile, "file", "f", "", "Scenario YAML; flags override its fields")
	f.Uint64Var(&simSeed, "seed", 0, "Random seed (default from config)")
	f.BoolVar(&simJSON, "json", false, "Print the full result record as JSON")

	f.StringVar((*string)(&simFlags.Policy), "access-policy", string(def.Policy), "Access policy: RBAC, ABAC, MAC, DAC")
	f.StringVar(&simFlags.UserID, "user", def.UserID, "Principal identifier")
	f.StringVar(&simFlags.Role, "role", def.Role, "Principal role")
	f.StringVar((*string)(&simFlags.RiskProfile), "risk-profile", string(def.RiskProfile), "Fallback risk profile: low, high, admin")
	f.StringVar(&simFlags.Location, "location", def.Location, "Access location")
	f.BoolVar(&simFlags.MFAEnabled, "mfa", def.MFAEnabled, "Present an MFA code")
	f.StringVar(&simFlags.MFACode, "mfa-code", def.MFACode, "MFA code to present")
	f.StringVar(&simFlags.AccessTime, "access-time", def.AccessTime, "Access time (HH:MM)")
	f.StringVar((*string)(&simFlags.Variant), "variant", string(def.Variant), "Architecture variant")
	f.IntVar(&simFlags.NetworkSize, "network-size", def.NetworkSize, "Number of network nodes")
	f.Float64Var(&simFlags.MaliciousRatio, "malicious-ratio", def.MaliciousRatio, "Fraction of malicious traffic [0,1]")
	f.Float64Var(&simFlags.AIThreshold, "ai-threshold", def.AIThreshold, "AI detector threshold [0,1]")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one access attempt",
	Long:  "Authenticates, scores risk, authorizes and synthesizes metrics for a single scenario.\nThe decision is appended to the ledger when one is configured.",
	Args:  cobra.NoArgs,
	RunE:  runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := scenarioFromFlags(cmd)
	if err != nil {
		return err
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = simSeed
	}

	rec, err := env.sim.Run(cmd.Context(), sc, synth.NewRand(seed))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if simJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	decision := "DENY"
	if rec.Allowed {
		decision = "ALLOW"
	}
	m := rec.MetricBundle
	fmt.Fprintf(out, "%s  policy=%s variant=%q risk=%.3f status=%d\n",
		decision, rec.ScenarioConfig.Policy, rec.ScenarioConfig.Variant, rec.RiskScore, m.HTTPStatus)
	fmt.Fprintf(out, "  fnr=%.4f fpr=%.4f precision=%.4f recall=%.4f f1=%.4f auc=%.4f adr=%.4f\n",
		m.FNR, m.FPR, m.Precision, m.Recall, m.F1, m.AUC, m.ADR)
	fmt.Fprintf(out, "  accuracy=%.2f%% success=%.0f%% response=%.3fms throughput=%.1f/s gas=%d\n",
		m.DetectionAccuracy, m.AccessSuccessRate, m.AvgResponseTime, m.Throughput, m.GasPerTx)
	return nil
}

// scenarioFromFlags starts from the scenario file (or defaults) and applies
// every flag the user set explicitly.
func scenarioFromFlags(cmd *cobra.Command) (model.ScenarioConfig, error) {
	sc := model.DefaultScenario()
	if simScenarioFile != "" {
		data, err := os.ReadFile(simScenarioFile)
		if err != nil {
			return sc, fmt.Errorf("read scenario: %w", err)
		}
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return sc, fmt.Errorf("parse scenario %s: %w", simScenarioFile, err)
		}
	}

	f := cmd.Flags()
	apply := func(name string, fn func()) {
		if f.Changed(name) {
			fn()
		}
	}
	apply("access-policy", func() { sc.Policy = simFlags.Policy })
	apply("user", func() { sc.UserID = simFlags.UserID })
	apply("role", func() { sc.Role = simFlags.Role })
	apply("risk-profile", func() { sc.RiskProfile = simFlags.RiskProfile })
	apply("location", func() { sc.Location = simFlags.Location })
	apply("mfa", func() { sc.MFAEnabled = simFlags.MFAEnabled })
	apply("mfa-code", func() { sc.MFACode = simFlags.MFACode })
	apply("access-time", func() { sc.AccessTime = simFlags.AccessTime })
	apply("variant", func() { sc.Variant = simFlags.Variant })
	apply("network-size", func() { sc.NetworkSize = simFlags.NetworkSize })
	apply("malicious-ratio", func() { sc.MaliciousRatio = simFlags.MaliciousRatio })
	apply("ai-threshold", func() { sc.AIThreshold = simFlags.AIThreshold })
	return sc, nil
}

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ztbench/internal/config"
	"github.com/ppiankov/ztbench/internal/logging"
)

var (
	configPath   string
	logLevel     string
	logFormat    string
	ledgerPath   string
	policyPath   string
	riskMode     string
	riskEndpoint string
	riskGRPCAddr string

	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config YAML (default $ZTBENCH_CONFIG or ~/.ztbench/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&ledgerPath, "ledger", "", "Append decision records to this JSONL ledger")
	pf.StringVar(&policyPath, "policy", "", "Path to policy ceilings YAML")
	pf.StringVar(&riskMode, "risk", "", "Risk scorer transport: http, grpc or none")
	pf.StringVar(&riskEndpoint, "risk-endpoint", "", "Risk scorer HTTP endpoint")
	pf.StringVar(&riskGRPCAddr, "risk-grpc-addr", "", "Risk scorer gRPC address")
}

var rootCmd = &cobra.Command{
	Use:           "ztbench",
	Short:         "Zero-trust access-control simulation bench",
	Long:          "Simulates access attempts against zero-trust architecture variants (plain, blockchain-audited, AI-assisted)\nand reports authorization decisions with synthesized security and performance metrics.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// loadConfig resolves configuration: defaults, file, environment, then flags.
func loadConfig(cmd *cobra.Command) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("log-level", &c.Log.Level, logLevel)
	override("log-format", &c.Log.Format, logFormat)
	override("ledger", &c.Ledger.Path, ledgerPath)
	override("policy", &c.PolicyPath, policyPath)
	override("risk", &c.Risk.Transport, riskMode)
	override("risk-endpoint", &c.Risk.Endpoint, riskEndpoint)
	override("risk-grpc-addr", &c.Risk.GRPCAddr, riskGRPCAddr)
	if err := c.Validate(); err != nil {
		return err
	}

	l, err := logging.New(cmd.ErrOrStderr(), c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

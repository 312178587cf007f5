package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ztmcp "github.com/ppiankov/ztbench/internal/mcp"
	"github.com/ppiankov/ztbench/internal/scenario"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs ztbench as an MCP (Model Context Protocol) server over stdio.\nExposes tools: simulate, benchmark, verify_ledger, ledger_tail.",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	runner := scenario.NewRunner(env.sim, scenario.WithWorkers(cfg.Workers), scenario.WithLogger(logger))
	srv := ztmcp.New(env.sim, runner, version, logger)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, "ztbench MCP server running on stdio")
	return srv.Run(ctx)
}

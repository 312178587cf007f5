// Package mcp exposes the simulator to MCP clients over stdio.
package mcp

import (
	"context"
	"io"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/ztbench/internal/scenario"
	"github.com/ppiankov/ztbench/internal/sim"
)

// Server wraps the MCP SDK server around a simulator and benchmark runner.
type Server struct {
	mcpServer *mcpsdk.Server
	sim       *sim.Simulator
	runner    *scenario.Runner
	logger    *slog.Logger
}

// New creates an MCP server with all ztbench tools registered.
func New(s *sim.Simulator, runner *scenario.Runner, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if runner == nil {
		runner = scenario.NewRunner(s, scenario.WithLogger(logger))
	}

	srv := &Server{
		sim:    s,
		runner: runner,
		logger: logger,
	}
	srv.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "ztbench",
			Version: version,
		},
		nil,
	)
	srv.registerTools()
	return srv
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all ztbench tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ztbench_simulate",
		Description: "Simulate one access attempt against a zero-trust architecture variant and return the decision and synthesized security metrics. Omitted fields take their defaults.",
	}, s.handleSimulate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ztbench_benchmark",
		Description: "Run a benchmark YAML file and return per-variant aggregated metrics.",
	}, s.handleBenchmark)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ztbench_verify_ledger",
		Description: "Verify the hash chain of a decision ledger file.",
	}, s.handleVerifyLedger)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ztbench_ledger_tail",
		Description: "Return the most recent decision records from a ledger file.",
	}, s.handleLedgerTail)
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ztbench/internal/scenario"
	"github.com/ppiankov/ztbench/internal/store"
)

var (
	benchFormat     string
	benchSQLite     string
	benchMetricsOut string
	benchWorkers    int
)

func init() {
	rootCmd.AddCommand(benchCmd)
	f := benchCmd.Flags()
	f.StringVar(&benchFormat, "format", "text", "Output format: text or json")
	f.StringVar(&benchSQLite, "sqlite", "", "Also store every record in this SQLite database")
	f.StringVar(&benchMetricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile after the run")
	f.IntVar(&benchWorkers, "workers", 0, "Concurrent simulations (default from config, then CPU count)")
}

var benchCmd = &cobra.Command{
	Use:   "bench <bench.yaml>",
	Short: "Run a benchmark file",
	Long:  "Expands a benchmark file into jobs (base scenario x sweep, plus explicit scenarios, times repetitions),\nruns them concurrently with derived seeds and prints per-variant aggregates.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchFormat != "text" && benchFormat != "json" {
		return fmt.Errorf("invalid format %q (want text or json)", benchFormat)
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := runBenchFile(cmd.Context(), env, args[0])
	if err != nil {
		return err
	}
	return emitBench(cmd, env, res)
}

func runBenchFile(ctx context.Context, env *environment, path string) (*scenario.Result, error) {
	workers := cfg.Workers
	if benchWorkers > 0 {
		workers = benchWorkers
	}
	runner := scenario.NewRunner(env.sim, scenario.WithWorkers(workers), scenario.WithLogger(logger))
	return runner.LoadAndRun(ctx, path)
}

func emitBench(cmd *cobra.Command, env *environment, res *scenario.Result) error {
	out := cmd.OutOrStdout()
	if benchFormat == "json" {
		s, err := scenario.FormatJSON(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	} else {
		fmt.Fprint(out, scenario.FormatText(res))
	}

	if benchSQLite != "" {
		db, err := store.Open(cmd.Context(), benchSQLite)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveRun(cmd.Context(), res); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "stored %d records in %s (run %s)\n", len(res.Records), benchSQLite, res.RunID)
	}

	if benchMetricsOut != "" {
		if err := env.metrics.WriteTextfile(benchMetricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

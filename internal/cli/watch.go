package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ztbench/internal/scenario"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&benchFormat, "format", "text", "Output format: text or json")
	watchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "Concurrent simulations")
}

var watchCmd = &cobra.Command{
	Use:   "watch <bench.yaml>",
	Short: "Re-run a benchmark file whenever it changes",
	Long:  "Runs the benchmark once, then again each time the file or the policy file is written.\nChanges are debounced by 500ms; the policy file is reloaded on every run.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rerun := func() {
		env, err := newEnvironment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "bench failed: %v\n", err)
			return
		}
		defer env.Close()

		res, err := runBenchFile(ctx, env, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "bench failed: %v\n", err)
			return
		}
		if err := emitBench(cmd, env, res); err != nil {
			fmt.Fprintf(os.Stderr, "output failed: %v\n", err)
		}
	}

	w, err := scenario.NewWatcher([]string{args[0], cfg.PolicyPath}, rerun, logger)
	if err != nil {
		return err
	}

	rerun()
	fmt.Fprintf(os.Stderr, "watching %v (Ctrl-C to stop)\n", w.Paths())
	return w.Run(ctx)
}

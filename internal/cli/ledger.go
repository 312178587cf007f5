package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ztbench/internal/audit"
)

var tailLines int

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerVerifyCmd)
	ledgerCmd.AddCommand(ledgerTailCmd)
	ledgerTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Decision ledger operations",
	Long:  "Commands for verifying and inspecting the hash-chained decision ledger.",
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of a ledger",
	Long:  "Walks the JSONL ledger and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry's canonical form.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerVerify,
}

var ledgerTailCmd = &cobra.Command{
	Use:   "tail <path>",
	Short: "Show recent ledger entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerTail,
}

func runLedgerVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])
	if !result.Valid {
		if result.ErrorLine > 0 {
			return fmt.Errorf("ledger broken at line %d: %s", result.ErrorLine, result.Error)
		}
		return fmt.Errorf("ledger unreadable: %s", result.Error)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries verified\n", result.Lines)
	return nil
}

func runLedgerTail(cmd *cobra.Command, args []string) error {
	entries, err := audit.Tail(args[0], tailLines)
	if err != nil {
		return err
	}
	for _, e := range entries {
		out, _ := json.MarshalIndent(e, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ztbench/internal/policydiff"
)

var policyDiffFormat string

func init() {
	rootCmd.AddCommand(policyDiffCmd)
	policyDiffCmd.Flags().StringVar(&policyDiffFormat, "format", "text", "Output format: text or json")
}

var policyDiffCmd = &cobra.Command{
	Use:   "policy-diff <old> [new]",
	Short: "Compare two policy files",
	Long:  "Shows which risk ceilings became stricter or looser and which policy attributes changed.\nWith a single argument the file is compared against the built-in defaults.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPolicyDiff,
}

func runPolicyDiff(cmd *cobra.Command, args []string) error {
	if policyDiffFormat != "text" && policyDiffFormat != "json" {
		return fmt.Errorf("invalid format %q (want text or json)", policyDiffFormat)
	}

	oldPath, newPath := "", args[0]
	if len(args) == 2 {
		oldPath, newPath = args[0], args[1]
	}

	r, err := policydiff.DiffFiles(oldPath, newPath)
	if err != nil {
		return err
	}

	if policyDiffFormat == "json" {
		out, err := policydiff.FormatJSON(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), policydiff.FormatText(r))
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/rulebase"
	"github.com/ppiankov/riskgate/internal/rulediff"
)

var diffFormat string

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "Output format (text|json)")
}

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compare two rule base files and show changes",
	Long: "Loads two rule base files and shows what changed: version, base rules\n" +
		"added/removed/changed/moved, override clauses, and mitigation categories.\n" +
		"Use - for the built-in rule base.",
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldRB, err := loadRuleArg(args[0])
	if err != nil {
		return fmt.Errorf("load old rule base: %w", err)
	}

	newRB, err := loadRuleArg(args[1])
	if err != nil {
		return fmt.Errorf("load new rule base: %w", err)
	}

	result := rulediff.Diff(oldRB, newRB)
	result.OldPath = args[0]
	result.NewPath = args[1]

	switch diffFormat {
	case "json":
		out, err := rulediff.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(rulediff.FormatText(result))
	}

	return nil
}

// loadRuleArg treats "-" as the built-in rule base.
func loadRuleArg(arg string) (*rulebase.RuleBase, error) {
	if arg == "-" {
		return rulebase.Default(), nil
	}
	return rulebase.Load(arg)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/sim"
)

var (
	simProfiles  string
	simCandidate string
	simFormat    string
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simProfiles, "profiles", "", "JSONL file of profiles, or a decision log written by serve --audit-log (required)")
	simulateCmd.Flags().StringVar(&simCandidate, "candidate", "", "Path to candidate rule base (required)")
	simulateCmd.Flags().StringVarP(&simFormat, "format", "f", "text", "Output format (text|json)")
	simulateCmd.MarkFlagRequired("profiles")
	simulateCmd.MarkFlagRequired("candidate")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay recorded profiles against a candidate rule base and show changes",
	Long: "Reads one JSON profile per line, classifies each under the current rule base\n" +
		"(--rules, or the built-in one) and under the candidate, and shows which\n" +
		"outcomes changed.\n\n" +
		"Use this to preview rule base changes before deploying them.",
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	result, err := sim.Simulate(simProfiles, rulesPath, simCandidate)
	if err != nil {
		return err
	}

	switch simFormat {
	case "json":
		out, err := sim.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(sim.FormatText(result))
	}

	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/audit"
)

var auditFormat string

func init() {
	auditVerifyCmd.Flags().StringVarP(&auditFormat, "format", "f", "text", "Output format (text|json)")
	auditCmd.AddCommand(auditVerifyCmd)
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect decision logs written by serve --audit-log",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify the hash chain of a decision log and summarize it",
	Long: "Walks the log line by line and checks that every entry references the\n" +
		"hash of the line before it. Exit code 1 if the chain is broken.",
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])

	switch auditFormat {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Print(audit.FormatText(args[0], result))
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/logging"
	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// exitConfig is EX_CONFIG from sysexits.h.
const exitConfig = 78

// rulesEnv names the rule base file when --rules is not given.
const rulesEnv = "RISKGATE_RULES"

var (
	rulesPath string
	logLevel  string
	logFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to rule base (YAML, TOML or JSON); falls back to $"+rulesEnv+", then the built-in rule base")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
}

var rootCmd = &cobra.Command{
	Use:   "riskgate",
	Short: "Project risk classification against a declarative rule base",
	Long: "Classifies project profiles as low, medium or high risk using ordered base rules\n" +
		"and override stages. High risk comes with the full mitigation catalogue.\n" +
		"Errors are reported as distinct outcomes, never as a risk level.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(os.Stderr, logFormat, logLevel)
		if rulesPath == "" {
			rulesPath = os.Getenv(rulesEnv)
		}
		return nil
	},
}

// loadRules loads the rule base selected by --rules or the environment.
func loadRules() (*rulebase.RuleBase, error) {
	return rulebase.Load(rulesPath)
}

// Execute runs the root command. A rule base that cannot be loaded exits
// with EX_CONFIG; any other failure exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, model.ErrConfigurationLoad) {
		fmt.Fprintf(os.Stderr, "FATAL: rule base could not be loaded: %v\n", err)
		return exitConfig
	}
	return 1
}

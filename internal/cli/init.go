package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/rulebase"
)

var (
	initMode  string
	initForce bool
)

func init() {
	initRulesCmd.Flags().StringVar(&initMode, "mode", "user", "Config location: user (~/.riskgate) or system (/etc/riskgate)")
	initRulesCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing rules.yaml")
	rootCmd.AddCommand(initRulesCmd)
}

var initRulesCmd = &cobra.Command{
	Use:   "init-rules",
	Short: "Write the built-in rule base as an editable rules.yaml",
	Long: `Creates the config directory and a commented rules.yaml holding the
built-in rule base.

User mode (default):  writes to ~/.riskgate/
System mode:          writes to /etc/riskgate/ (requires root)`,
	RunE: runInitRules,
}

func runInitRules(cmd *cobra.Command, args []string) error {
	configDir, err := initConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(configDir, "rules.yaml")
	wrote, err := writeIfMissing(path, rulebase.DefaultYAML())
	if err != nil {
		return err
	}

	if wrote {
		fmt.Printf("Created %s\n", path)
	} else {
		fmt.Printf("%s already exists (use --force to overwrite).\n", path)
	}
	fmt.Println()
	fmt.Println("Verify:")
	fmt.Printf("  riskgate validate %s\n", path)
	fmt.Println()
	fmt.Println("Use it:")
	fmt.Printf("  export %s=%s\n", rulesEnv, path)
	return nil
}

// initConfigDir returns the configuration directory based on mode.
func initConfigDir() (string, error) {
	switch initMode {
	case "system":
		return "/etc/riskgate", nil
	case "user", "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".riskgate"), nil
	default:
		return "", fmt.Errorf("unknown mode %q: use 'user' or 'system'", initMode)
	}
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

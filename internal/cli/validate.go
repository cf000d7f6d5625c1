package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/rulebase"
)

var validateFormat string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text|json)")
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Load a rule base and check that its base rules cover every profile",
	Long: "Parses the rule base (the argument, --rules, or the built-in one), compiles\n" +
		"every condition and verifies that some base rule matches every legal\n" +
		"profile. Exits 78 when the rule base is rejected.",
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

type validateSummary struct {
	Path       string `json:"path"`
	Version    string `json:"version"`
	Hash       string `json:"hash"`
	Rules      int    `json:"rules"`
	Overrides  int    `json:"overrides"`
	Categories int    `json:"categories"`
	Samples    int    `json:"samples_checked"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := rulesPath
	if len(args) == 1 {
		path = args[0]
	}

	rb, err := rulebase.Load(path)
	if err != nil {
		return err
	}

	s := validateSummary{
		Path:       path,
		Version:    rb.Version(),
		Hash:       rb.Hash(),
		Rules:      len(rb.Rules()),
		Overrides:  len(rb.Overrides()),
		Categories: len(rb.Catalogue()),
		Samples:    len(rulebase.SampleProfiles(rb)),
	}
	if s.Path == "" {
		s.Path = "(built-in)"
	}

	switch validateFormat {
	case "json":
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Printf("Rule base %s is valid.\n\n", s.Path)
		fmt.Printf("  version:     %s\n", s.Version)
		fmt.Printf("  hash:        %s\n", s.Hash)
		fmt.Printf("  rules:       %d\n", s.Rules)
		fmt.Printf("  overrides:   %d\n", s.Overrides)
		fmt.Printf("  categories:  %d\n", s.Categories)
		fmt.Printf("  coverage:    %d sampled profiles, all classified\n", s.Samples)
	}
	return nil
}

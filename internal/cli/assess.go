package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskgate/internal/classifier"
	"github.com/ppiankov/riskgate/internal/model"
)

var (
	assessMargin       float64
	assessProjectType  string
	assessSIA          string
	assessContract     string
	assessRelationship string
	assessClient       string
	assessProfit       float64
	assessFormat       string
)

func init() {
	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().Float64Var(&assessMargin, "margin", 0, "Expected margin in percent, e.g. 12.5 (required)")
	assessCmd.Flags().StringVar(&assessProjectType, "project-type", "", "Planning & Execution | Planning Only | Execution Only (required)")
	assessCmd.Flags().StringVar(&assessSIA, "sia", "", "SIA complexity level 1-5 (required)")
	assessCmd.Flags().StringVar(&assessContract, "contract", "", "Fixed Price | Hourly (required)")
	assessCmd.Flags().StringVar(&assessRelationship, "relationship", "", "New | Established (required)")
	assessCmd.Flags().StringVar(&assessClient, "client", "", "Private | Government (required)")
	assessCmd.Flags().Float64Var(&assessProfit, "profit", 0, "Expected absolute profit (optional)")
	assessCmd.Flags().StringVarP(&assessFormat, "format", "f", "text", "Output format (text|json)")
	for _, f := range []string{"margin", "project-type", "sia", "contract", "relationship", "client"} {
		assessCmd.MarkFlagRequired(f)
	}
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Classify one project profile",
	Long: "Classifies a project from its margin, type, SIA complexity, contract,\n" +
		"client relationship and client type. Form labels such as \"Fixed Price\"\n" +
		"and canonical values such as fixed_price are both accepted.\n\n" +
		"Exit code 0 on a classification, 1 when no level could be assigned.",
	RunE: runAssess,
}

// errNotClassified signals that the outcome was already reported.
var errNotClassified = errors.New("project not classified")

func runAssess(cmd *cobra.Command, args []string) error {
	raw := map[string]any{
		"margin_percent":      assessMargin,
		"project_type":        assessProjectType,
		"sia_complexity":      assessSIA,
		"contract_type":       assessContract,
		"client_relationship": assessRelationship,
		"client_type":         assessClient,
	}
	if cmd != nil && cmd.Flags().Changed("profit") {
		raw["expected_profit"] = assessProfit
	}

	rb, err := loadRules()
	if err != nil {
		return err
	}
	e, err := classifier.New(rb)
	if err != nil {
		return err
	}

	var r model.Result
	p, err := model.ProfileFromMap(raw)
	if err == nil {
		r, err = e.Classify(p)
	}

	switch assessFormat {
	case "json":
		if werr := writeAssessmentJSON(os.Stdout, r, err); werr != nil {
			return werr
		}
	default:
		writeAssessment(os.Stdout, r, err)
	}

	if err != nil {
		if errors.Is(err, model.ErrConfigurationLoad) {
			return err
		}
		return errNotClassified
	}
	return nil
}

// writeAssessment renders each outcome with its own headline; an error is
// never shown as a risk level.
func writeAssessment(w io.Writer, r model.Result, err error) {
	switch model.Outcome(err) {
	case "":
	case model.OutcomeInvalidProfile:
		fmt.Fprintln(w, "Error: The project parameters are invalid.")
		fmt.Fprintf(w, "%v\n", err)
		fmt.Fprintln(w, "Please review the inputs and try again.")
		return
	case model.OutcomeUndefinedProfile:
		fmt.Fprintln(w, "Error: The project parameters did not match a defined risk profile.")
		fmt.Fprintln(w, "The rule base does not cover this profile. Please review the inputs or the rule base.")
		return
	case model.OutcomeEvaluationFailure:
		fmt.Fprintln(w, "Final Assessed Risk: Error in assessment")
		fmt.Fprintf(w, "There was an issue evaluating the rule base: %v\n", err)
		return
	default:
		fmt.Fprintf(w, "An unexpected result was returned: %v\n", err)
		return
	}

	switch r.Risk {
	case model.High:
		fmt.Fprintln(w, "Final Assessed Risk: High")
		fmt.Fprintln(w, "This project meets the criteria for High Risk. A senior project manager review is required before proceeding.")
	case model.Medium:
		fmt.Fprintln(w, "Final Assessed Risk: Medium")
		fmt.Fprintln(w, "This project falls into the Medium Risk category. Consider a review before proceeding.")
	default:
		fmt.Fprintln(w, "Final Assessed Risk: Low")
		fmt.Fprintln(w, "This project is classified as Low Risk and seems financially sound based on the input parameters.")
	}

	fmt.Fprintf(w, "\nBase rule: %s (%s)\n", r.BaseRuleID, r.BaseRisk)
	for _, s := range r.Applied {
		fmt.Fprintf(w, "Override:  %s, %s → %s\n", s.Override, s.From, s.To)
	}

	if len(r.Suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "\nMitigation suggestions:")
	category := ""
	for _, s := range r.Suggestions {
		if s.Category != category {
			category = s.Category
			fmt.Fprintf(w, "  %s\n", category)
		}
		fmt.Fprintf(w, "    - %s: %s\n", s.Action, s.Purpose)
	}
}

type assessmentJSON struct {
	Outcome string         `json:"outcome"`
	Result  *model.Result  `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func writeAssessmentJSON(w io.Writer, r model.Result, err error) error {
	out := assessmentJSON{Outcome: "classified"}
	if err != nil {
		out.Outcome = model.Outcome(err)
		out.Error = err.Error()
		out.Details = model.ErrorValues(err)
	} else {
		out.Result = &r
	}
	data, merr := json.MarshalIndent(out, "", "  ")
	if merr != nil {
		return fmt.Errorf("marshal assessment: %w", merr)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

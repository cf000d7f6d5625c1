package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/classifier"
	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

func classifyDefault(t *testing.T, p model.ProjectProfile) model.Result {
	t.Helper()
	e, err := classifier.New(rulebase.Default())
	if err != nil {
		t.Fatal(err)
	}
	r, err := e.Classify(p)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestWriteAssessmentLevels(t *testing.T) {
	tests := []struct {
		name    string
		profile model.ProjectProfile
		want    []string
		absent  []string
	}{
		{
			name: "high lists mitigations",
			profile: model.NewProfile(5, model.PlanningAndExecution, 1, model.FixedPrice,
				model.EstablishedClient, model.PrivateClient, nil),
			want: []string{
				"Final Assessed Risk: High",
				"senior project manager review",
				"Base rule: fixed_price_low_margin (high)",
				"Mitigation suggestions:",
				"  Team Composition\n",
				"  Phase Splitting\n",
			},
		},
		{
			name: "medium after override",
			profile: model.NewProfile(25, model.ExecutionOnly, 4, model.Hourly,
				model.NewClient, model.PrivateClient, model.Profit(100_000)),
			want:   []string{"Final Assessed Risk: Medium", "Override:  margin, high → medium"},
			absent: []string{"Mitigation suggestions:"},
		},
		{
			name: "low",
			profile: model.NewProfile(18, model.PlanningAndExecution, 2, model.Hourly,
				model.EstablishedClient, model.GovernmentClient, nil),
			want:   []string{"Final Assessed Risk: Low", "financially sound"},
			absent: []string{"Mitigation suggestions:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeAssessment(&buf, classifyDefault(t, tt.profile), nil)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in output:\n%s", w, out)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a) {
					t.Errorf("unexpected %q in output:\n%s", a, out)
				}
			}
		})
	}
}

func TestWriteAssessmentErrorsAreNotLevels(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{goerr.Wrap(model.ErrInvalidProfile, "sia_complexity out of domain"), "Error: The project parameters are invalid."},
		{goerr.Wrap(model.ErrUndefinedRiskProfile, "no base rule matched"), "did not match a defined risk profile"},
		{goerr.Wrap(model.ErrEvaluationFailure, "guard panicked"), "Final Assessed Risk: Error in assessment"},
		{errors.New("something else"), "An unexpected result was returned"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		writeAssessment(&buf, model.Result{}, tt.err)
		out := buf.String()
		if !strings.Contains(out, tt.want) {
			t.Errorf("expected %q in output:\n%s", tt.want, out)
		}
		for _, level := range []string{"Risk: Low", "Risk: Medium", "Risk: High"} {
			if strings.Contains(out, level) {
				t.Errorf("error rendered as a level %q:\n%s", level, out)
			}
		}
	}
}

func TestWriteAssessmentJSON(t *testing.T) {
	var buf bytes.Buffer
	err := goerr.Wrap(model.ErrInvalidProfile, "bad", goerr.V(model.FieldKey, "sia_complexity"))
	if werr := writeAssessmentJSON(&buf, model.Result{}, err); werr != nil {
		t.Fatal(werr)
	}

	var got struct {
		Outcome string         `json:"outcome"`
		Result  any            `json:"result"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", buf.String(), err)
	}
	if got.Outcome != model.OutcomeInvalidProfile || got.Result != nil {
		t.Errorf("unexpected JSON %s", buf.String())
	}
	if got.Details[model.FieldKey] != "sia_complexity" {
		t.Errorf("expected field detail, got %v", got.Details)
	}

	buf.Reset()
	r := classifyDefault(t, model.NewProfile(18, model.PlanningAndExecution, 2, model.Hourly,
		model.EstablishedClient, model.GovernmentClient, nil))
	if err := writeAssessmentJSON(&buf, r, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"risk_level": "low"`) {
		t.Errorf("expected risk_level in JSON, got %s", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(goerr.Wrap(model.ErrConfigurationLoad, "missing")); got != exitConfig {
		t.Errorf("expected %d for configuration load failure, got %d", exitConfig, got)
	}
	if got := exitCode(errNotClassified); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestRunAssessReportsUnclassified(t *testing.T) {
	rulesPath = ""
	assessFormat = "json"
	assessMargin = 15
	assessProjectType = "Planning & Execution"
	assessSIA = "Level 7"
	assessContract = "Hourly"
	assessRelationship = "Established"
	assessClient = "Private"
	defer func() { assessFormat = "text" }()

	if err := runAssess(nil, nil); !errors.Is(err, errNotClassified) {
		t.Fatalf("expected errNotClassified, got %v", err)
	}

	assessSIA = "Level 2"
	if err := runAssess(nil, nil); err != nil {
		t.Fatalf("expected classification, got %v", err)
	}
}

func TestRunAssessMissingRulesIsConfigError(t *testing.T) {
	rulesPath = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { rulesPath = "" }()

	err := runAssess(nil, nil)
	if exitCode(err) != exitConfig {
		t.Fatalf("expected configuration exit code, got %v", err)
	}
}

func TestCheckScenariosCalibration(t *testing.T) {
	rulesPath = ""
	results, err := checkScenarios("../scenario/testdata/*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Failed > 0 {
			t.Errorf("%s: %d failing cases: %+v", r.File, r.Failed, r.Cases)
		}
	}

	if _, err := checkScenarios("testdata/none-*.yaml"); err == nil {
		t.Error("expected error when no files match")
	}
}

func TestRunValidate(t *testing.T) {
	rulesPath = ""
	validateFormat = "json"
	defer func() { validateFormat = "text" }()

	if err := runValidate(nil, nil); err != nil {
		t.Fatalf("built-in rule base should validate: %v", err)
	}

	gap := filepath.Join("..", "rulebase", "testdata", "gap.yaml")
	err := runValidate(nil, []string{gap})
	if exitCode(err) != exitConfig {
		t.Fatalf("expected non-total rule base to be a configuration error, got %v", err)
	}
}

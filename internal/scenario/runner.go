package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/riskgate/internal/classifier"
	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Profile converts the case profile to a validated ProjectProfile.
func (cp CaseProfile) Profile() (model.ProjectProfile, error) {
	m := map[string]any{
		"project_type":        cp.ProjectType,
		"sia_complexity":      cp.SIA,
		"contract_type":       cp.Contract,
		"client_relationship": cp.Relationship,
		"client_type":         cp.Client,
	}
	if cp.MarginPercent != nil {
		m["margin_percent"] = *cp.MarginPercent
	}
	if cp.ExpectedProfit != nil {
		m["expected_profit"] = *cp.ExpectedProfit
	}
	return model.ProfileFromMap(m)
}

// Run evaluates all cases in a scenario against the given engine.
// Cases are independent of each other.
func Run(s *Scenario, e *classifier.Engine) *RunResult {
	result := &RunResult{
		Name:     s.Name,
		RuleBase: e.RuleBase().Version(),
		Total:    len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := CaseResult{
			Index:    i + 1,
			Name:     c.Name,
			Expected: c.Expect.String(),
		}

		r, err := classify(e, c.Profile)
		if err != nil {
			cr.Actual = "error:" + model.Outcome(err)
			cr.Reason = err.Error()
		} else {
			cr.Actual = r.Risk.String()
			cr.Reason = r.Reason()
		}

		if mismatch := c.Expect.check(r, err); mismatch == "" {
			cr.Passed = true
			result.Passed++
		} else {
			cr.Reason = mismatch
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

func classify(e *classifier.Engine, cp CaseProfile) (model.Result, error) {
	p, err := cp.Profile()
	if err != nil {
		return model.Result{}, err
	}
	return e.Classify(p)
}

// String renders the expectation in the same form as CaseResult.Actual.
func (x Expectation) String() string {
	if x.Error != "" {
		return "error:" + x.Error
	}
	return strings.ToLower(x.Risk)
}

// check returns "" when r/err satisfy the expectation, otherwise a
// description of the first mismatch.
func (x Expectation) check(r model.Result, err error) string {
	if x.Error != "" {
		if err == nil {
			return fmt.Sprintf("expected %s error, got %s", x.Error, r.Risk)
		}
		if got := model.Outcome(err); got != x.Error {
			return fmt.Sprintf("expected %s error, got %s", x.Error, got)
		}
		return ""
	}
	if err != nil {
		return fmt.Sprintf("unexpected %s: %v", model.Outcome(err), err)
	}

	want, perr := model.ParseRiskLevel(x.Risk)
	if perr != nil {
		return fmt.Sprintf("bad expectation risk %q", x.Risk)
	}
	if r.Risk != want {
		return fmt.Sprintf("expected %s, got %s (%s)", want, r.Risk, r.Reason())
	}
	if x.BaseRisk != "" {
		base, perr := model.ParseRiskLevel(x.BaseRisk)
		if perr != nil {
			return fmt.Sprintf("bad expectation base_risk %q", x.BaseRisk)
		}
		if r.BaseRisk != base {
			return fmt.Sprintf("expected base %s, got %s", base, r.BaseRisk)
		}
	}
	if x.Overrides != nil {
		var got []string
		for _, s := range r.Applied {
			got = append(got, s.Override)
		}
		if strings.Join(got, ",") != strings.Join(x.Overrides, ",") {
			return fmt.Sprintf("expected overrides [%s], got [%s]",
				strings.Join(x.Overrides, " "), strings.Join(got, " "))
		}
	}
	if x.Suggestions != nil && len(r.Suggestions) != *x.Suggestions {
		return fmt.Sprintf("expected %d suggestions, got %d", *x.Suggestions, len(r.Suggestions))
	}
	return ""
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadAndRun loads a scenario YAML file and the rule base at rulesPath
// (embedded default when empty), and runs.
func LoadAndRun(path, rulesPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	rb, err := rulebase.Load(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rule base: %w", err)
	}

	e, err := classifier.New(rb)
	if err != nil {
		return nil, err
	}

	result := Run(s, e)
	result.File = path

	return result, nil
}

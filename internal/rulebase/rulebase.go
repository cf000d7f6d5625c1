// Package rulebase holds the declarative risk policy: ordered base rules,
// ordered override stages and the mitigation catalogue. A RuleBase is
// immutable once built and safe to share between goroutines.
package rulebase

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/model"
)

// Rule is a base classification rule. Rules are evaluated in order and
// the first matching guard wins.
type Rule struct {
	ID          string
	Description string
	Guard       Guard
	Risk        model.RiskLevel
}

// Describe renders the rule guard.
func (r Rule) Describe() string {
	return describeGuard(r.Guard)
}

// Outcome is what an override clause does to the current level:
// either replace it (Set) or move it by Shift steps, clamped.
type Outcome struct {
	Set   bool
	Level model.RiskLevel
	Shift int
}

// SetLevel returns an absolute outcome.
func SetLevel(l model.RiskLevel) Outcome {
	return Outcome{Set: true, Level: l}
}

// ShiftBy returns a relative outcome.
func ShiftBy(n int) Outcome {
	return Outcome{Shift: n}
}

// Apply computes the new level.
func (o Outcome) Apply(current model.RiskLevel) model.RiskLevel {
	if o.Set {
		return o.Level
	}
	return current.Shift(o.Shift)
}

func (o Outcome) String() string {
	if o.Set {
		return "-> " + o.Level.String()
	}
	return fmt.Sprintf("shift %+d", o.Shift)
}

// Clause is one guarded outcome inside an override stage.
type Clause struct {
	Guard   Guard
	Outcome Outcome
}

// Describe renders the clause guard.
func (c Clause) Describe() string {
	return describeGuard(c.Guard)
}

// Override is an ordered stage applied after base classification.
// Within a stage the first matching clause wins, so one stage moves the
// level at most once.
type Override struct {
	ID          string
	Description string
	Clauses     []Clause
}

// Mitigation is one (action, purpose) pair.
type Mitigation struct {
	Action  string `yaml:"action" toml:"action" json:"action"`
	Purpose string `yaml:"purpose" toml:"purpose" json:"purpose"`
}

// Category groups mitigations under a catalogue heading.
type Category struct {
	Name  string
	Items []Mitigation
}

// RuleBase is the compiled, immutable policy.
type RuleBase struct {
	version   string
	hash      string
	rules     []Rule
	overrides []Override
	catalogue []Category
}

// New assembles a RuleBase from already compiled parts. Slices are
// copied. IDs must be unique, every level valid and the mitigation
// catalogue non-empty, since high risk always carries suggestions.
func New(version string, rules []Rule, overrides []Override, catalogue []Category) (*RuleBase, error) {
	if len(rules) == 0 {
		return nil, goerr.Wrap(model.ErrConfigurationLoad, "rule base has no rules")
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, fmt.Sprintf("rule %d has no id", i+1))
		}
		if seen[r.ID] {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "duplicate rule id", goerr.V(model.RuleIDKey, r.ID))
		}
		seen[r.ID] = true
		if r.Guard == nil {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "rule has no guard", goerr.V(model.RuleIDKey, r.ID))
		}
		if !r.Risk.Valid() {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "rule has invalid risk level", goerr.V(model.RuleIDKey, r.ID))
		}
	}

	seenOverride := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		if o.ID == "" {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "override has no id")
		}
		if seenOverride[o.ID] {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "duplicate override id", goerr.V(model.OverrideIDKey, o.ID))
		}
		seenOverride[o.ID] = true
		if len(o.Clauses) == 0 {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "override has no clauses", goerr.V(model.OverrideIDKey, o.ID))
		}
		for _, c := range o.Clauses {
			if c.Guard == nil {
				return nil, goerr.Wrap(model.ErrConfigurationLoad, "override clause has no guard", goerr.V(model.OverrideIDKey, o.ID))
			}
			if c.Outcome.Set && !c.Outcome.Level.Valid() {
				return nil, goerr.Wrap(model.ErrConfigurationLoad, "override clause has invalid level", goerr.V(model.OverrideIDKey, o.ID))
			}
			if !c.Outcome.Set && (c.Outcome.Shift < -2 || c.Outcome.Shift > 2 || c.Outcome.Shift == 0) {
				return nil, goerr.Wrap(model.ErrConfigurationLoad, "override shift must be -2..2 and non-zero", goerr.V(model.OverrideIDKey, o.ID))
			}
		}
	}

	if len(catalogue) == 0 {
		return nil, goerr.Wrap(model.ErrConfigurationLoad, "mitigation catalogue is empty")
	}
	seenCategory := make(map[string]bool, len(catalogue))
	for _, c := range catalogue {
		if c.Name == "" {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "mitigation category has no name")
		}
		if seenCategory[c.Name] {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "duplicate mitigation category", goerr.V("category", c.Name))
		}
		seenCategory[c.Name] = true
		if len(c.Items) == 0 {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, "mitigation category is empty", goerr.V("category", c.Name))
		}
		for _, m := range c.Items {
			if m.Action == "" || m.Purpose == "" {
				return nil, goerr.Wrap(model.ErrConfigurationLoad, "mitigation needs action and purpose", goerr.V("category", c.Name))
			}
		}
	}

	rb := &RuleBase{
		version:   version,
		rules:     append([]Rule(nil), rules...),
		overrides: make([]Override, len(overrides)),
		catalogue: make([]Category, len(catalogue)),
	}
	for i, o := range overrides {
		o.Clauses = append([]Clause(nil), o.Clauses...)
		rb.overrides[i] = o
	}
	for i, c := range catalogue {
		c.Items = append([]Mitigation(nil), c.Items...)
		rb.catalogue[i] = c
	}
	return rb, nil
}

// Version is the document version string.
func (rb *RuleBase) Version() string { return rb.version }

// Hash is "sha256:<hex>" of the source bytes, or "" when built in code.
func (rb *RuleBase) Hash() string { return rb.hash }

// Rules returns a copy of the base rules in priority order.
func (rb *RuleBase) Rules() []Rule {
	return append([]Rule(nil), rb.rules...)
}

// Overrides returns a copy of the override stages in application order.
func (rb *RuleBase) Overrides() []Override {
	out := make([]Override, len(rb.overrides))
	for i, o := range rb.overrides {
		o.Clauses = append([]Clause(nil), o.Clauses...)
		out[i] = o
	}
	return out
}

// Catalogue returns a copy of the mitigation catalogue in order.
func (rb *RuleBase) Catalogue() []Category {
	out := make([]Category, len(rb.catalogue))
	for i, c := range rb.catalogue {
		c.Items = append([]Mitigation(nil), c.Items...)
		out[i] = c
	}
	return out
}

// MatchBase walks the base rules in order and returns the first rule whose
// guard holds. ok is false when no rule matched.
func (rb *RuleBase) MatchBase(p model.ProjectProfile) (rule Rule, ok bool, err error) {
	f := Facts{Profile: p}
	for _, r := range rb.rules {
		matched, err := evalGuard(r.Guard, f)
		if err != nil {
			return Rule{}, false, goerr.Wrap(err, "base rule evaluation failed", goerr.V(model.RuleIDKey, r.ID))
		}
		if matched {
			return r, true, nil
		}
	}
	return Rule{}, false, nil
}

// Match returns the index of the first clause of o that holds for f.
func (o Override) Match(f Facts) (index int, ok bool, err error) {
	for i, c := range o.Clauses {
		matched, err := evalGuard(c.Guard, f)
		if err != nil {
			return 0, false, goerr.Wrap(err, "override evaluation failed",
				goerr.V(model.OverrideIDKey, o.ID), goerr.V("clause", i+1))
		}
		if matched {
			return i, true, nil
		}
	}
	return 0, false, nil
}

package rulebase

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/model"
)

// Facts are the bindings a guard is evaluated against.
// Level is meaningful only for override clauses.
type Facts struct {
	Profile model.ProjectProfile
	Level   model.RiskLevel
}

// Guard is a predicate over Facts. A returned error is an evaluation
// fault, never a "no match".
type Guard interface {
	Match(f Facts) (bool, error)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(f Facts) (bool, error)

// Match implements Guard.
func (fn GuardFunc) Match(f Facts) (bool, error) {
	return fn(f)
}

// Condition is the declarative guard used in rule base documents.
// All fields are optional; set fields are combined with AND.
// List fields match when the value is any of the listed atoms.
type Condition struct {
	ProjectType        []string `yaml:"project_type,omitempty" toml:"project_type,omitempty" json:"project_type,omitempty"`
	ContractType       []string `yaml:"contract_type,omitempty" toml:"contract_type,omitempty" json:"contract_type,omitempty"`
	ClientRelationship []string `yaml:"client_relationship,omitempty" toml:"client_relationship,omitempty" json:"client_relationship,omitempty"`
	ClientType         []string `yaml:"client_type,omitempty" toml:"client_type,omitempty" json:"client_type,omitempty"`
	Level              []string `yaml:"level,omitempty" toml:"level,omitempty" json:"level,omitempty"`

	SIAMin *int `yaml:"sia_min,omitempty" toml:"sia_min,omitempty" json:"sia_min,omitempty"`
	SIAMax *int `yaml:"sia_max,omitempty" toml:"sia_max,omitempty" json:"sia_max,omitempty"`

	MarginBelow   *float64 `yaml:"margin_below,omitempty" toml:"margin_below,omitempty" json:"margin_below,omitempty"`
	MarginAtLeast *float64 `yaml:"margin_at_least,omitempty" toml:"margin_at_least,omitempty" json:"margin_at_least,omitempty"`
	MarginAbove   *float64 `yaml:"margin_above,omitempty" toml:"margin_above,omitempty" json:"margin_above,omitempty"`
	MarginAtMost  *float64 `yaml:"margin_at_most,omitempty" toml:"margin_at_most,omitempty" json:"margin_at_most,omitempty"`

	ProfitAbove   *float64 `yaml:"profit_above,omitempty" toml:"profit_above,omitempty" json:"profit_above,omitempty"`
	ProfitPresent *bool    `yaml:"profit_present,omitempty" toml:"profit_present,omitempty" json:"profit_present,omitempty"`
}

// String renders the condition in rule-table notation.
func (c Condition) String() string {
	var parts []string
	add := func(format string, args ...any) {
		parts = append(parts, fmt.Sprintf(format, args...))
	}
	if len(c.ProjectType) > 0 {
		add("project_type in [%s]", strings.Join(c.ProjectType, ","))
	}
	if len(c.ContractType) > 0 {
		add("contract_type in [%s]", strings.Join(c.ContractType, ","))
	}
	if len(c.ClientRelationship) > 0 {
		add("client_relationship in [%s]", strings.Join(c.ClientRelationship, ","))
	}
	if len(c.ClientType) > 0 {
		add("client_type in [%s]", strings.Join(c.ClientType, ","))
	}
	if len(c.Level) > 0 {
		add("level in [%s]", strings.Join(c.Level, ","))
	}
	if c.SIAMin != nil {
		add("sia >= %d", *c.SIAMin)
	}
	if c.SIAMax != nil {
		add("sia <= %d", *c.SIAMax)
	}
	if c.MarginBelow != nil {
		add("margin < %g", *c.MarginBelow)
	}
	if c.MarginAtLeast != nil {
		add("margin >= %g", *c.MarginAtLeast)
	}
	if c.MarginAbove != nil {
		add("margin > %g", *c.MarginAbove)
	}
	if c.MarginAtMost != nil {
		add("margin <= %g", *c.MarginAtMost)
	}
	if c.ProfitAbove != nil {
		add("profit > %g", *c.ProfitAbove)
	}
	if c.ProfitPresent != nil {
		add("profit_present = %t", *c.ProfitPresent)
	}
	if len(parts) == 0 {
		return "always"
	}
	return strings.Join(parts, " and ")
}

// condition is a compiled Condition with typed sets.
type condition struct {
	src Condition

	projectTypes  map[model.ProjectType]bool
	contracts     map[model.ContractType]bool
	relationships map[model.ClientRelationship]bool
	clients       map[model.ClientType]bool
	levels        map[model.RiskLevel]bool
}

// compile validates every atom and returns an immutable guard.
// allowLevel is false for base rules, which run before any level exists.
func (c Condition) compile(allowLevel bool) (*condition, error) {
	cc := &condition{src: c}

	if len(c.ProjectType) > 0 {
		cc.projectTypes = make(map[model.ProjectType]bool, len(c.ProjectType))
		for _, s := range c.ProjectType {
			v := model.ProjectType(s)
			if !v.Valid() {
				return nil, badAtom("project_type", s)
			}
			cc.projectTypes[v] = true
		}
	}
	if len(c.ContractType) > 0 {
		cc.contracts = make(map[model.ContractType]bool, len(c.ContractType))
		for _, s := range c.ContractType {
			v := model.ContractType(s)
			if !v.Valid() {
				return nil, badAtom("contract_type", s)
			}
			cc.contracts[v] = true
		}
	}
	if len(c.ClientRelationship) > 0 {
		cc.relationships = make(map[model.ClientRelationship]bool, len(c.ClientRelationship))
		for _, s := range c.ClientRelationship {
			v := model.ClientRelationship(s)
			if !v.Valid() {
				return nil, badAtom("client_relationship", s)
			}
			cc.relationships[v] = true
		}
	}
	if len(c.ClientType) > 0 {
		cc.clients = make(map[model.ClientType]bool, len(c.ClientType))
		for _, s := range c.ClientType {
			v := model.ClientType(s)
			if !v.Valid() {
				return nil, badAtom("client_type", s)
			}
			cc.clients[v] = true
		}
	}
	if len(c.Level) > 0 {
		if !allowLevel {
			return nil, goerr.New("level condition is only allowed in overrides",
				goerr.V(model.FieldKey, "level"))
		}
		cc.levels = make(map[model.RiskLevel]bool, len(c.Level))
		for _, s := range c.Level {
			v, err := model.ParseRiskLevel(s)
			if err != nil {
				return nil, badAtom("level", s)
			}
			cc.levels[v] = true
		}
	}

	if c.SIAMin != nil && (*c.SIAMin < model.MinSIAComplexity || *c.SIAMin > model.MaxSIAComplexity) {
		return nil, badAtom("sia_min", *c.SIAMin)
	}
	if c.SIAMax != nil && (*c.SIAMax < model.MinSIAComplexity || *c.SIAMax > model.MaxSIAComplexity) {
		return nil, badAtom("sia_max", *c.SIAMax)
	}
	if c.ProfitAbove != nil && *c.ProfitAbove < 0 {
		return nil, badAtom("profit_above", *c.ProfitAbove)
	}

	return cc, nil
}

func badAtom(field string, value any) error {
	return goerr.New(fmt.Sprintf("invalid value for %s", field),
		goerr.V(model.FieldKey, field), goerr.V(model.ValueKey, value))
}

// Match implements Guard.
func (c *condition) Match(f Facts) (bool, error) {
	p := f.Profile
	if c.projectTypes != nil && !c.projectTypes[p.ProjectType] {
		return false, nil
	}
	if c.contracts != nil && !c.contracts[p.ContractType] {
		return false, nil
	}
	if c.relationships != nil && !c.relationships[p.ClientRelationship] {
		return false, nil
	}
	if c.clients != nil && !c.clients[p.ClientType] {
		return false, nil
	}
	if c.levels != nil && !c.levels[f.Level] {
		return false, nil
	}

	src := c.src
	if src.SIAMin != nil && p.SIAComplexity < *src.SIAMin {
		return false, nil
	}
	if src.SIAMax != nil && p.SIAComplexity > *src.SIAMax {
		return false, nil
	}
	if src.MarginBelow != nil && !(p.MarginFraction < *src.MarginBelow) {
		return false, nil
	}
	if src.MarginAtLeast != nil && !(p.MarginFraction >= *src.MarginAtLeast) {
		return false, nil
	}
	if src.MarginAbove != nil && !(p.MarginFraction > *src.MarginAbove) {
		return false, nil
	}
	if src.MarginAtMost != nil && !(p.MarginFraction <= *src.MarginAtMost) {
		return false, nil
	}
	if src.ProfitPresent != nil && p.HasProfit() != *src.ProfitPresent {
		return false, nil
	}
	if src.ProfitAbove != nil && !(p.HasProfit() && p.ProfitValue() > *src.ProfitAbove) {
		return false, nil
	}
	return true, nil
}

func (c *condition) String() string {
	return c.src.String()
}

// marginThresholds lists every margin boundary the condition tests.
func (c *condition) marginThresholds() []float64 {
	var out []float64
	for _, v := range []*float64{c.src.MarginBelow, c.src.MarginAtLeast, c.src.MarginAbove, c.src.MarginAtMost} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func (c *condition) profitThresholds() []float64 {
	if c.src.ProfitAbove == nil {
		return nil
	}
	return []float64{*c.src.ProfitAbove}
}

// evalGuard runs g and converts faults and panics into ErrEvaluationFailure.
func evalGuard(g Guard, f Facts) (matched bool, err error) {
	if g == nil {
		return false, goerr.Wrap(model.ErrEvaluationFailure, "nil guard")
	}
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = goerr.Wrap(model.ErrEvaluationFailure, fmt.Sprintf("guard panicked: %v", r))
		}
	}()
	matched, err = g.Match(f)
	if err != nil {
		return false, goerr.Wrap(model.ErrEvaluationFailure, err.Error())
	}
	return matched, nil
}

// describeGuard renders a guard for listings and diffs.
func describeGuard(g Guard) string {
	if s, ok := g.(fmt.Stringer); ok {
		return s.String()
	}
	return "custom guard"
}

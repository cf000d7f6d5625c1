package rulebase

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/model"
)

// Document is the on-disk form of a rule base.
type Document struct {
	Version     string        `yaml:"version" toml:"version" json:"version"`
	Rules       []RuleDoc     `yaml:"rules" toml:"rules" json:"rules"`
	Overrides   []OverrideDoc `yaml:"overrides" toml:"overrides" json:"overrides"`
	Mitigations []CategoryDoc `yaml:"mitigations" toml:"mitigations" json:"mitigations"`
}

// RuleDoc is one base rule.
type RuleDoc struct {
	ID          string    `yaml:"id" toml:"id" json:"id"`
	Description string    `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	When        Condition `yaml:"when" toml:"when" json:"when"`
	Risk        string    `yaml:"risk" toml:"risk" json:"risk"`
}

// OverrideDoc is one override stage.
type OverrideDoc struct {
	ID          string      `yaml:"id" toml:"id" json:"id"`
	Description string      `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	Clauses     []ClauseDoc `yaml:"clauses" toml:"clauses" json:"clauses"`
}

// ClauseDoc sets exactly one of Risk or Shift.
type ClauseDoc struct {
	When  Condition `yaml:"when" toml:"when" json:"when"`
	Risk  string    `yaml:"risk,omitempty" toml:"risk,omitempty" json:"risk,omitempty"`
	Shift *int      `yaml:"shift,omitempty" toml:"shift,omitempty" json:"shift,omitempty"`
}

// CategoryDoc is one mitigation catalogue heading.
type CategoryDoc struct {
	Category string       `yaml:"category" toml:"category" json:"category"`
	Items    []Mitigation `yaml:"items" toml:"items" json:"items"`
}

// Compile validates the document and builds an immutable RuleBase.
func (d *Document) Compile() (*RuleBase, error) {
	rules := make([]Rule, 0, len(d.Rules))
	for i, rd := range d.Rules {
		guard, err := rd.When.compile(false)
		if err != nil {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, err.Error(),
				goerr.V(model.RuleIDKey, rd.ID), goerr.V("index", i+1))
		}
		risk, err := model.ParseRiskLevel(rd.Risk)
		if err != nil {
			return nil, goerr.Wrap(model.ErrConfigurationLoad, err.Error(), goerr.V(model.RuleIDKey, rd.ID))
		}
		rules = append(rules, Rule{
			ID:          rd.ID,
			Description: rd.Description,
			Guard:       guard,
			Risk:        risk,
		})
	}

	overrides := make([]Override, 0, len(d.Overrides))
	for _, od := range d.Overrides {
		o := Override{ID: od.ID, Description: od.Description}
		for j, cd := range od.Clauses {
			guard, err := cd.When.compile(true)
			if err != nil {
				return nil, goerr.Wrap(model.ErrConfigurationLoad, err.Error(),
					goerr.V(model.OverrideIDKey, od.ID), goerr.V("clause", j+1))
			}
			outcome, err := cd.outcome()
			if err != nil {
				return nil, goerr.Wrap(model.ErrConfigurationLoad, err.Error(),
					goerr.V(model.OverrideIDKey, od.ID), goerr.V("clause", j+1))
			}
			o.Clauses = append(o.Clauses, Clause{Guard: guard, Outcome: outcome})
		}
		overrides = append(overrides, o)
	}

	catalogue := make([]Category, 0, len(d.Mitigations))
	for _, cd := range d.Mitigations {
		catalogue = append(catalogue, Category{Name: cd.Category, Items: cd.Items})
	}

	return New(d.Version, rules, overrides, catalogue)
}

func (cd ClauseDoc) outcome() (Outcome, error) {
	switch {
	case cd.Risk != "" && cd.Shift != nil:
		return Outcome{}, fmt.Errorf("clause sets both risk and shift")
	case cd.Risk != "":
		l, err := model.ParseRiskLevel(cd.Risk)
		if err != nil {
			return Outcome{}, err
		}
		return SetLevel(l), nil
	case cd.Shift != nil:
		return ShiftBy(*cd.Shift), nil
	default:
		return Outcome{}, fmt.Errorf("clause sets neither risk nor shift")
	}
}

// Package classifier evaluates a ProjectProfile against a rule base.
//
// Evaluation order (must not be changed):
//  1. Profile validation
//  2. Base rules, first match wins
//  3. Override stages in rule base order, first matching clause per stage
//  4. Mitigations, attached only when the final level is high
package classifier

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Engine classifies profiles against one immutable rule base.
// It holds no mutable state apart from an optional result cache and is
// safe for concurrent use.
type Engine struct {
	rb    *rulebase.RuleBase
	cache *resultCache
}

// Option configures an Engine.
type Option func(*Engine) error

// WithCache enables an LRU cache of up to size results, keyed on the
// complete profile. size <= 0 disables caching.
func WithCache(size int) Option {
	return func(e *Engine) error {
		if size <= 0 {
			return nil
		}
		c, err := newResultCache(size)
		if err != nil {
			return err
		}
		e.cache = c
		return nil
	}
}

// New creates an engine bound to rb.
func New(rb *rulebase.RuleBase, opts ...Option) (*Engine, error) {
	if rb == nil {
		return nil, goerr.Wrap(model.ErrNotLoaded, "classifier requires a loaded rule base")
	}
	e := &Engine{rb: rb}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// RuleBase returns the rule base the engine evaluates.
func (e *Engine) RuleBase() *rulebase.RuleBase {
	return e.rb
}

// Classify returns the final risk level and, for high risk, the full
// mitigation catalogue. Errors are always one of the model taxonomy
// sentinels; an error is never accompanied by a usable result.
func (e *Engine) Classify(p model.ProjectProfile) (model.Result, error) {
	if err := p.Validate(); err != nil {
		return model.Result{}, err
	}

	if e.cache != nil {
		if r, ok := e.cache.get(p); ok {
			return r, nil
		}
	}

	r, err := e.evaluate(p)
	if err != nil {
		return model.Result{}, err
	}

	if e.cache != nil {
		e.cache.add(p, r)
	}
	return r.Clone(), nil
}

func (e *Engine) evaluate(p model.ProjectProfile) (model.Result, error) {
	// Step 1: Base classification
	rule, ok, err := e.rb.MatchBase(p)
	if err != nil {
		return model.Result{}, err
	}
	if !ok {
		return model.Result{}, goerr.Wrap(model.ErrUndefinedRiskProfile,
			"no base rule matched a valid profile", goerr.V("profile", p.ToMap()))
	}

	result := model.Result{
		Risk:       rule.Risk,
		BaseRisk:   rule.Risk,
		BaseRuleID: rule.ID,
		Applied:    []model.OverrideStep{},
	}

	// Step 2: Overrides, each stage sees the previous stage's level
	for _, o := range e.rb.Overrides() {
		idx, ok, err := o.Match(rulebase.Facts{Profile: p, Level: result.Risk})
		if err != nil {
			return model.Result{}, err
		}
		if !ok {
			continue
		}
		next := o.Clauses[idx].Outcome.Apply(result.Risk)
		if next == result.Risk {
			continue
		}
		result.Applied = append(result.Applied, model.OverrideStep{
			Override: o.ID,
			Clause:   idx + 1,
			From:     result.Risk,
			To:       next,
		})
		result.Risk = next
	}

	if !result.Risk.Valid() {
		return model.Result{}, goerr.Wrap(model.ErrEvaluationFailure, "override produced an invalid level")
	}

	// Step 3: Mitigations
	result.Suggestions = Mitigations(result.Risk, e.rb.Catalogue())
	return result, nil
}

package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for the classification taxonomy. Every surface reports
// these as distinct outcomes; none of them is ever mapped to a risk level.
var (
	// ErrInvalidProfile: input outside its declared domain. Recoverable.
	ErrInvalidProfile = goerr.New("invalid project profile")

	// ErrUndefinedRiskProfile: no base rule matched a legal profile.
	// Indicates a rule base defect.
	ErrUndefinedRiskProfile = goerr.New("undefined risk profile")

	// ErrEvaluationFailure: a guard faulted during evaluation.
	ErrEvaluationFailure = goerr.New("rule evaluation failure")

	// ErrConfigurationLoad: the rule base could not be loaded. Fatal.
	ErrConfigurationLoad = goerr.New("rule base configuration load failure")

	// ErrNotLoaded: classification attempted before a rule base was loaded.
	ErrNotLoaded = goerr.New("rule base not loaded")
)

// Context keys for error values
const (
	FieldKey      = "field"
	ValueKey      = "value"
	RuleIDKey     = "rule_id"
	OverrideIDKey = "override_id"
	PathKey       = "path"
)

// Outcome labels
const (
	OutcomeInvalidProfile    = "invalid_profile"
	OutcomeUndefinedProfile  = "undefined_risk_profile"
	OutcomeEvaluationFailure = "evaluation_failure"
	OutcomeConfigLoadFailure = "configuration_load_failure"
	OutcomeNotLoaded         = "not_loaded"
	OutcomeUnknownError      = "error"
)

// Outcome returns the stable label for a taxonomy error.
// Errors outside the taxonomy map to OutcomeUnknownError; nil maps to "".
func Outcome(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidProfile):
		return OutcomeInvalidProfile
	case errors.Is(err, ErrUndefinedRiskProfile):
		return OutcomeUndefinedProfile
	case errors.Is(err, ErrEvaluationFailure):
		return OutcomeEvaluationFailure
	case errors.Is(err, ErrConfigurationLoad):
		return OutcomeConfigLoadFailure
	case errors.Is(err, ErrNotLoaded):
		return OutcomeNotLoaded
	default:
		return OutcomeUnknownError
	}
}

// SentinelFor is the inverse of Outcome. Unknown labels return nil.
func SentinelFor(outcome string) error {
	switch outcome {
	case OutcomeInvalidProfile:
		return ErrInvalidProfile
	case OutcomeUndefinedProfile:
		return ErrUndefinedRiskProfile
	case OutcomeEvaluationFailure:
		return ErrEvaluationFailure
	case OutcomeConfigLoadFailure:
		return ErrConfigurationLoad
	case OutcomeNotLoaded:
		return ErrNotLoaded
	default:
		return nil
	}
}

// ErrorValues extracts goerr context values from err, or nil.
func ErrorValues(err error) map[string]any {
	var ge *goerr.Error
	if errors.As(err, &ge) {
		return ge.Values()
	}
	return nil
}

package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ProjectType classifies how much of the project lifecycle is delivered.
type ProjectType string

const (
	PlanningAndExecution ProjectType = "planning_and_execution"
	PlanningOnly         ProjectType = "planning_only"
	ExecutionOnly        ProjectType = "execution_only"
)

// ContractType is the billing model of the contract.
type ContractType string

const (
	FixedPrice ContractType = "fixed_price"
	Hourly     ContractType = "hourly"
)

// ClientRelationship records prior experience with the client.
type ClientRelationship string

const (
	NewClient         ClientRelationship = "new"
	EstablishedClient ClientRelationship = "established"
)

// ClientType distinguishes private from public-sector clients.
type ClientType string

const (
	PrivateClient    ClientType = "private"
	GovernmentClient ClientType = "government"
)

// Domain listings, in the order used for exhaustive enumeration.
var (
	ProjectTypes        = []ProjectType{PlanningAndExecution, PlanningOnly, ExecutionOnly}
	ContractTypes       = []ContractType{FixedPrice, Hourly}
	ClientRelationships = []ClientRelationship{NewClient, EstablishedClient}
	ClientTypes         = []ClientType{PrivateClient, GovernmentClient}
)

// SIA complexity bounds (inclusive).
const (
	MinSIAComplexity = 1
	MaxSIAComplexity = 5
)

// Valid reports domain membership.
func (t ProjectType) Valid() bool {
	switch t {
	case PlanningAndExecution, PlanningOnly, ExecutionOnly:
		return true
	}
	return false
}

// Valid reports domain membership.
func (c ContractType) Valid() bool {
	return c == FixedPrice || c == Hourly
}

// Valid reports domain membership.
func (r ClientRelationship) Valid() bool {
	return r == NewClient || r == EstablishedClient
}

// Valid reports domain membership.
func (c ClientType) Valid() bool {
	return c == PrivateClient || c == GovernmentClient
}

// ProjectProfile is the immutable input to one classification.
type ProjectProfile struct {
	MarginFraction     float64            `json:"margin_fraction" yaml:"margin_fraction"`
	ProjectType        ProjectType        `json:"project_type" yaml:"project_type"`
	SIAComplexity      int                `json:"sia_complexity" yaml:"sia_complexity"`
	ContractType       ContractType       `json:"contract_type" yaml:"contract_type"`
	ClientRelationship ClientRelationship `json:"client_relationship" yaml:"client_relationship"`
	ClientType         ClientType         `json:"client_type" yaml:"client_type"`
	ExpectedProfit     *float64           `json:"expected_profit,omitempty" yaml:"expected_profit,omitempty"`
}

// MarginFromPercent converts a percentage (15 for 15%) to a fraction (0.15).
func MarginFromPercent(percent float64) float64 {
	return percent / 100
}

// NewProfile builds a profile from a margin given in percent.
// profit may be nil when no absolute profit figure is known.
func NewProfile(marginPercent float64, pt ProjectType, sia int, ct ContractType, rel ClientRelationship, client ClientType, profit *float64) ProjectProfile {
	p := ProjectProfile{
		MarginFraction:     MarginFromPercent(marginPercent),
		ProjectType:        pt,
		SIAComplexity:      sia,
		ContractType:       ct,
		ClientRelationship: rel,
		ClientType:         client,
	}
	if profit != nil {
		v := *profit
		p.ExpectedProfit = &v
	}
	return p
}

// Profit returns a pointer to a copy of v, for optional profit fields.
func Profit(v float64) *float64 {
	return &v
}

// HasProfit reports whether an absolute profit figure was supplied.
func (p ProjectProfile) HasProfit() bool {
	return p.ExpectedProfit != nil
}

// ProfitValue returns the supplied profit, or 0 when absent.
func (p ProjectProfile) ProfitValue() float64 {
	if p.ExpectedProfit == nil {
		return 0
	}
	return *p.ExpectedProfit
}

// Validate checks every field against its domain.
func (p ProjectProfile) Validate() error {
	if math.IsNaN(p.MarginFraction) || math.IsInf(p.MarginFraction, 0) {
		return invalidField("margin_fraction", p.MarginFraction)
	}
	if !p.ProjectType.Valid() {
		return invalidField("project_type", string(p.ProjectType))
	}
	if p.SIAComplexity < MinSIAComplexity || p.SIAComplexity > MaxSIAComplexity {
		return invalidField("sia_complexity", p.SIAComplexity)
	}
	if !p.ContractType.Valid() {
		return invalidField("contract_type", string(p.ContractType))
	}
	if !p.ClientRelationship.Valid() {
		return invalidField("client_relationship", string(p.ClientRelationship))
	}
	if !p.ClientType.Valid() {
		return invalidField("client_type", string(p.ClientType))
	}
	if p.ExpectedProfit != nil {
		v := *p.ExpectedProfit
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalidField("expected_profit", v)
		}
	}
	return nil
}

func invalidField(field string, value any) error {
	return goerr.Wrap(ErrInvalidProfile, fmt.Sprintf("%s out of domain", field),
		goerr.V(FieldKey, field), goerr.V(ValueKey, value))
}

// Suggestion is one mitigation action attached to a high-risk outcome.
type Suggestion struct {
	Category string `json:"category" yaml:"category"`
	Action   string `json:"action" yaml:"action"`
	Purpose  string `json:"purpose" yaml:"purpose"`
}

// OverrideStep records one override clause that fired.
type OverrideStep struct {
	Override string    `json:"override"`
	Clause   int       `json:"clause"`
	From     RiskLevel `json:"from"`
	To       RiskLevel `json:"to"`
}

// Result is the output of one classification.
type Result struct {
	Risk        RiskLevel      `json:"risk_level"`
	BaseRisk    RiskLevel      `json:"base_risk_level"`
	BaseRuleID  string         `json:"base_rule"`
	Applied     []OverrideStep `json:"overrides"`
	Suggestions []Suggestion   `json:"suggestions"`
}

// Reason renders a one-line explanation of how the final level was reached.
func (r Result) Reason() string {
	var b strings.Builder
	fmt.Fprintf(&b, "base %s by rule %s", r.BaseRisk, r.BaseRuleID)
	for _, s := range r.Applied {
		fmt.Fprintf(&b, "; %s -> %s by %s override", s.From, s.To, s.Override)
	}
	return b.String()
}

// Clone returns a deep copy so cached results are never shared.
func (r Result) Clone() Result {
	out := r
	out.Applied = append([]OverrideStep(nil), r.Applied...)
	out.Suggestions = append(make([]Suggestion, 0, len(r.Suggestions)), r.Suggestions...)
	if out.Applied == nil {
		out.Applied = []OverrideStep{}
	}
	return out
}

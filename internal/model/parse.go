package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// normalizeLabel folds the assessment form labels ("Planning & Execution",
// "Fixed Price", "Level 4") onto the canonical atoms.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.Join(strings.Fields(s), "_")
	return strings.ReplaceAll(s, "-", "_")
}

// ParseProjectType accepts canonical atoms and form labels.
func ParseProjectType(s string) (ProjectType, error) {
	t := ProjectType(normalizeLabel(s))
	if !t.Valid() {
		return "", invalidField("project_type", s)
	}
	return t, nil
}

// ParseContractType accepts canonical atoms and form labels.
func ParseContractType(s string) (ContractType, error) {
	c := ContractType(normalizeLabel(s))
	if !c.Valid() {
		return "", invalidField("contract_type", s)
	}
	return c, nil
}

// ParseClientRelationship accepts canonical atoms and form labels.
func ParseClientRelationship(s string) (ClientRelationship, error) {
	r := ClientRelationship(normalizeLabel(s))
	if !r.Valid() {
		return "", invalidField("client_relationship", s)
	}
	return r, nil
}

// ParseClientType accepts canonical atoms and form labels.
func ParseClientType(s string) (ClientType, error) {
	c := ClientType(normalizeLabel(s))
	if !c.Valid() {
		return "", invalidField("client_type", s)
	}
	return c, nil
}

// ParseSIA accepts "4", "level 4" and "Level 5 (Highest Complexity)".
func ParseSIA(s string) (int, error) {
	f := strings.Fields(strings.ToLower(s))
	if len(f) >= 2 && f[0] == "level" {
		f = f[1:]
	}
	if len(f) == 0 {
		return 0, invalidField("sia_complexity", s)
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < MinSIAComplexity || n > MaxSIAComplexity {
		return 0, invalidField("sia_complexity", s)
	}
	return n, nil
}

// ProfileFromMap builds a profile from loosely typed input (JSON objects,
// protobuf Structs, MCP arguments). The margin is read from
// "margin_percent" (converted) or "margin_fraction" (as-is); exactly one
// must be present. The result is validated.
func ProfileFromMap(m map[string]any) (ProjectProfile, error) {
	var p ProjectProfile
	if m == nil {
		return p, goerr.Wrap(ErrInvalidProfile, "empty profile")
	}

	pct, hasPct, err := numberField(m, "margin_percent")
	if err != nil {
		return p, err
	}
	frac, hasFrac, err := numberField(m, "margin_fraction")
	if err != nil {
		return p, err
	}
	switch {
	case hasPct && hasFrac:
		return p, goerr.Wrap(ErrInvalidProfile, "both margin_percent and margin_fraction given",
			goerr.V(FieldKey, "margin"))
	case hasPct:
		p.MarginFraction = MarginFromPercent(pct)
	case hasFrac:
		p.MarginFraction = frac
	default:
		return p, goerr.Wrap(ErrInvalidProfile, "margin is required", goerr.V(FieldKey, "margin"))
	}

	if p.ProjectType, err = ParseProjectType(toString(m["project_type"])); err != nil {
		return p, err
	}
	if p.ContractType, err = ParseContractType(toString(m["contract_type"])); err != nil {
		return p, err
	}
	if p.ClientRelationship, err = ParseClientRelationship(toString(m["client_relationship"])); err != nil {
		return p, err
	}
	if p.ClientType, err = ParseClientType(toString(m["client_type"])); err != nil {
		return p, err
	}

	switch v := m["sia_complexity"].(type) {
	case string:
		if p.SIAComplexity, err = ParseSIA(v); err != nil {
			return p, err
		}
	default:
		n, ok := toFloat(v)
		if !ok || n != float64(int(n)) {
			return p, invalidField("sia_complexity", v)
		}
		p.SIAComplexity = int(n)
	}

	if raw, ok := m["expected_profit"]; ok && raw != nil {
		v, ok := toFloat(raw)
		if !ok {
			return p, invalidField("expected_profit", raw)
		}
		p.ExpectedProfit = &v
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// ToMap converts the profile to a map for serialization.
func (p ProjectProfile) ToMap() map[string]any {
	m := map[string]any{
		"margin_fraction":     p.MarginFraction,
		"project_type":        string(p.ProjectType),
		"sia_complexity":      float64(p.SIAComplexity),
		"contract_type":       string(p.ContractType),
		"client_relationship": string(p.ClientRelationship),
		"client_type":         string(p.ClientType),
	}
	if p.ExpectedProfit != nil {
		m["expected_profit"] = *p.ExpectedProfit
	}
	return m
}

// numberField reads an optional numeric field. A field that is present
// but not a number is an error naming the bad value, not "missing".
func numberField(m map[string]any, key string) (float64, bool, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, false, invalidField(key, raw)
	}
	return v, true, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

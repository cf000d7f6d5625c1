package riskgatev1

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/riskgate/internal/model"
)

// Reply is a decoded Classify response.
type Reply struct {
	Result       model.Result
	RequestID    string
	RuleBaseHash string
}

// ProfileToStruct encodes a profile as a Classify request.
func ProfileToStruct(p model.ProjectProfile) (*structpb.Struct, error) {
	return structpb.NewStruct(p.ToMap())
}

// ProfileFromStruct decodes and validates a Classify request.
func ProfileFromStruct(s *structpb.Struct) (model.ProjectProfile, error) {
	return model.ProfileFromMap(s.AsMap())
}

// ResultToStruct encodes a classification result.
func ResultToStruct(r model.Result, requestID, ruleBaseHash string) (*structpb.Struct, error) {
	overrides := make([]any, len(r.Applied))
	for i, s := range r.Applied {
		overrides[i] = map[string]any{
			"override": s.Override,
			"clause":   float64(s.Clause),
			"from":     s.From.String(),
			"to":       s.To.String(),
		}
	}
	suggestions := make([]any, len(r.Suggestions))
	for i, s := range r.Suggestions {
		suggestions[i] = map[string]any{
			"category": s.Category,
			"action":   s.Action,
			"purpose":  s.Purpose,
		}
	}
	return structpb.NewStruct(map[string]any{
		"risk":          r.Risk.String(),
		"base_risk":     r.BaseRisk.String(),
		"base_rule":     r.BaseRuleID,
		"overrides":     overrides,
		"suggestions":   suggestions,
		"request_id":    requestID,
		"rulebase_hash": ruleBaseHash,
	})
}

// ResultFromStruct decodes a Classify response.
func ResultFromStruct(s *structpb.Struct) (Reply, error) {
	var reply Reply
	f := s.GetFields()

	risk, err := model.ParseRiskLevel(f["risk"].GetStringValue())
	if err != nil {
		return reply, fmt.Errorf("decode risk: %w", err)
	}
	base, err := model.ParseRiskLevel(f["base_risk"].GetStringValue())
	if err != nil {
		return reply, fmt.Errorf("decode base_risk: %w", err)
	}

	r := model.Result{
		Risk:        risk,
		BaseRisk:    base,
		BaseRuleID:  f["base_rule"].GetStringValue(),
		Applied:     []model.OverrideStep{},
		Suggestions: []model.Suggestion{},
	}

	for _, v := range f["overrides"].GetListValue().GetValues() {
		o := v.GetStructValue().GetFields()
		from, err := model.ParseRiskLevel(o["from"].GetStringValue())
		if err != nil {
			return reply, fmt.Errorf("decode override: %w", err)
		}
		to, err := model.ParseRiskLevel(o["to"].GetStringValue())
		if err != nil {
			return reply, fmt.Errorf("decode override: %w", err)
		}
		r.Applied = append(r.Applied, model.OverrideStep{
			Override: o["override"].GetStringValue(),
			Clause:   int(o["clause"].GetNumberValue()),
			From:     from,
			To:       to,
		})
	}

	for _, v := range f["suggestions"].GetListValue().GetValues() {
		sg := v.GetStructValue().GetFields()
		r.Suggestions = append(r.Suggestions, model.Suggestion{
			Category: sg["category"].GetStringValue(),
			Action:   sg["action"].GetStringValue(),
			Purpose:  sg["purpose"].GetStringValue(),
		})
	}

	reply.Result = r
	reply.RequestID = f["request_id"].GetStringValue()
	reply.RuleBaseHash = f["rulebase_hash"].GetStringValue()
	return reply, nil
}

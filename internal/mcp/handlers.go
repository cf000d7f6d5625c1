package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// --- Input/Output types ---

// ClassifyInput defines parameters for the riskgate_classify tool.
type ClassifyInput struct {
	MarginPercent      float64  `json:"margin_percent" jsonschema:"profit margin in percent, e.g. 12.5"`
	ProjectType        string   `json:"project_type" jsonschema:"planning_and_execution, planning_only or execution_only"`
	SIAComplexity      int      `json:"sia_complexity" jsonschema:"SIA complexity level 1 to 5"`
	ContractType       string   `json:"contract_type" jsonschema:"fixed_price or hourly"`
	ClientRelationship string   `json:"client_relationship" jsonschema:"new or established"`
	ClientType         string   `json:"client_type" jsonschema:"private or government"`
	ExpectedProfit     *float64 `json:"expected_profit,omitempty" jsonschema:"expected absolute profit, optional"`
}

// OverrideItem describes one override that changed the level.
type OverrideItem struct {
	Override string `json:"override"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// ClassifyOutput contains the classification or the error outcome.
type ClassifyOutput struct {
	Outcome     string             `json:"outcome"`
	Risk        string             `json:"risk,omitempty"`
	BaseRisk    string             `json:"base_risk,omitempty"`
	BaseRule    string             `json:"base_rule,omitempty"`
	Overrides   []OverrideItem     `json:"overrides,omitempty"`
	Suggestions []model.Suggestion `json:"suggestions,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// CatalogueInput is empty; no parameters needed.
type CatalogueInput struct{}

// CatalogueOutput lists the mitigation catalogue.
type CatalogueOutput struct {
	Version    string         `json:"version"`
	Hash       string         `json:"hash,omitempty"`
	Categories []CategoryItem `json:"categories"`
}

// CategoryItem is one catalogue heading with its mitigations.
type CategoryItem struct {
	Name  string                `json:"name"`
	Items []rulebase.Mitigation `json:"items"`
}

// --- Handlers ---

func (s *Server) handleClassify(ctx context.Context, req *mcpsdk.CallToolRequest, input ClassifyInput) (*mcpsdk.CallToolResult, ClassifyOutput, error) {
	m := map[string]any{
		"margin_percent":      input.MarginPercent,
		"project_type":        input.ProjectType,
		"sia_complexity":      input.SIAComplexity,
		"contract_type":       input.ContractType,
		"client_relationship": input.ClientRelationship,
		"client_type":         input.ClientType,
	}
	if input.ExpectedProfit != nil {
		m["expected_profit"] = *input.ExpectedProfit
	}

	p, err := model.ProfileFromMap(m)
	if err == nil {
		var r model.Result
		if r, err = s.holder.Classify(p); err == nil {
			return nil, toOutput(r), nil
		}
	}

	out := ClassifyOutput{Outcome: model.Outcome(err), Error: err.Error()}
	s.log.Info("riskgate_classify rejected", "outcome", out.Outcome, "values", model.ErrorValues(err))
	return &mcpsdk.CallToolResult{IsError: true}, out, nil
}

func toOutput(r model.Result) ClassifyOutput {
	out := ClassifyOutput{
		Outcome:     "classified",
		Risk:        r.Risk.String(),
		BaseRisk:    r.BaseRisk.String(),
		BaseRule:    r.BaseRuleID,
		Suggestions: r.Suggestions,
		Reason:      r.Reason(),
	}
	for _, s := range r.Applied {
		out.Overrides = append(out.Overrides, OverrideItem{
			Override: s.Override,
			From:     s.From.String(),
			To:       s.To.String(),
		})
	}
	return out
}

func (s *Server) handleCatalogue(ctx context.Context, req *mcpsdk.CallToolRequest, input CatalogueInput) (*mcpsdk.CallToolResult, CatalogueOutput, error) {
	e := s.holder.Engine()
	if e == nil {
		return &mcpsdk.CallToolResult{IsError: true}, CatalogueOutput{}, nil
	}
	rb := e.RuleBase()

	out := CatalogueOutput{
		Version:    rb.Version(),
		Hash:       rb.Hash(),
		Categories: []CategoryItem{},
	}
	for _, c := range rb.Catalogue() {
		out.Categories = append(out.Categories, CategoryItem{Name: c.Name, Items: c.Items})
	}
	return nil, out, nil
}

package audit

import (
	"github.com/ppiankov/riskgate/internal/model"
)

// OutcomeClassified marks an entry that produced a risk level.
const OutcomeClassified = "classified"

// Entry is one line in the hash-chained JSONL decision log.
// Only structs and slices are used so json.Marshal output, and with it
// the chain hash, is reproducible.
type Entry struct {
	Timestamp    string               `json:"ts"`
	RequestID    string               `json:"request_id"`
	Surface      string               `json:"surface"`
	Profile      model.ProjectProfile `json:"profile"`
	Outcome      string               `json:"outcome"`
	Risk         string               `json:"risk,omitempty"`
	BaseRule     string               `json:"base_rule,omitempty"`
	Overrides    []string             `json:"overrides,omitempty"`
	RuleBaseHash string               `json:"rulebase_hash"`
	PrevHash     string               `json:"prev_hash"`
}

// NewEntry records the result of one classification. err takes
// precedence over r.
func NewEntry(surface, requestID, ruleBaseHash string, p model.ProjectProfile, r model.Result, err error) Entry {
	e := Entry{
		RequestID:    requestID,
		Surface:      surface,
		Profile:      p,
		RuleBaseHash: ruleBaseHash,
	}
	if err != nil {
		e.Outcome = model.Outcome(err)
		return e
	}
	e.Outcome = OutcomeClassified
	e.Risk = r.Risk.String()
	e.BaseRule = r.BaseRuleID
	for _, s := range r.Applied {
		e.Overrides = append(e.Overrides, s.Override)
	}
	return e
}

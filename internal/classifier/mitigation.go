package classifier

import (
	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Mitigations returns every catalogue item, in catalogue order, for High.
// Low and Medium get an empty, non-nil slice. No profile-specific
// filtering is applied.
func Mitigations(level model.RiskLevel, catalogue []rulebase.Category) []model.Suggestion {
	if level != model.High {
		return []model.Suggestion{}
	}
	n := 0
	for _, c := range catalogue {
		n += len(c.Items)
	}
	out := make([]model.Suggestion, 0, n)
	for _, c := range catalogue {
		for _, m := range c.Items {
			out = append(out, model.Suggestion{
				Category: c.Name,
				Action:   m.Action,
				Purpose:  m.Purpose,
			})
		}
	}
	return out
}

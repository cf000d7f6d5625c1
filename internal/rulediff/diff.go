// Package rulediff compares two rule bases.
package rulediff

import (
	"fmt"
	"strings"

	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Change represents a scalar field change.
type Change struct {
	Field   string `json:"field"`
	Old     string `json:"old"`
	New     string `json:"new"`
	Comment string `json:"comment,omitempty"`
}

// Item is one added, removed or changed entry in a list section.
type Item struct {
	Type   string `json:"type"` // "added", "removed", "changed", "moved"
	ID     string `json:"id"`
	Detail string `json:"detail"`
}

// DiffResult holds the comparison of two rule bases.
type DiffResult struct {
	OldPath         string   `json:"old_path"`
	NewPath         string   `json:"new_path"`
	Changes         []Change `json:"changes"`
	RuleChanges     []Item   `json:"rule_changes"`
	OverrideChanges []Item   `json:"override_changes"`
	CategoryChanges []Item   `json:"category_changes"`
	HasChanges      bool     `json:"has_changes"`
}

// Diff compares two rule bases and returns the differences.
func Diff(old, new *rulebase.RuleBase) *DiffResult {
	r := &DiffResult{}

	if old.Version() != new.Version() {
		r.Changes = append(r.Changes, Change{Field: "version", Old: old.Version(), New: new.Version()})
	}
	if old.Hash() != new.Hash() && old.Hash() != "" && new.Hash() != "" {
		r.Changes = append(r.Changes, Change{Field: "hash", Old: old.Hash(), New: new.Hash()})
	}

	diffRules(r, old.Rules(), new.Rules())
	diffOverrides(r, old.Overrides(), new.Overrides())
	diffCatalogue(r, old.Catalogue(), new.Catalogue())

	r.HasChanges = len(r.Changes) > 0 || len(r.RuleChanges) > 0 ||
		len(r.OverrideChanges) > 0 || len(r.CategoryChanges) > 0
	return r
}

// levelComment labels a level change; higher risk is stricter.
func levelComment(old, new model.RiskLevel) string {
	if new > old {
		return "stricter"
	}
	return "looser"
}

func ruleLabel(rule rulebase.Rule) string {
	return fmt.Sprintf("%s → %s", rule.Describe(), rule.Risk)
}

func diffRules(r *DiffResult, oldRules, newRules []rulebase.Rule) {
	oldIdx := make(map[string]int, len(oldRules))
	for i, rule := range oldRules {
		oldIdx[rule.ID] = i
	}
	newIdx := make(map[string]int, len(newRules))
	for i, rule := range newRules {
		newIdx[rule.ID] = i
	}

	// Check for added and changed
	for i, rule := range newRules {
		j, exists := oldIdx[rule.ID]
		if !exists {
			r.RuleChanges = append(r.RuleChanges, Item{Type: "added", ID: rule.ID, Detail: ruleLabel(rule)})
			continue
		}
		prev := oldRules[j]
		if prev.Describe() != rule.Describe() {
			r.RuleChanges = append(r.RuleChanges, Item{
				Type:   "changed",
				ID:     rule.ID,
				Detail: fmt.Sprintf("when %s (was: %s)", rule.Describe(), prev.Describe()),
			})
		}
		if prev.Risk != rule.Risk {
			r.RuleChanges = append(r.RuleChanges, Item{
				Type:   "changed",
				ID:     rule.ID,
				Detail: fmt.Sprintf("→ %s (was: %s, %s)", rule.Risk, prev.Risk, levelComment(prev.Risk, rule.Risk)),
			})
		}
		// First match wins, so position is part of the meaning.
		if j != i {
			r.RuleChanges = append(r.RuleChanges, Item{
				Type:   "moved",
				ID:     rule.ID,
				Detail: fmt.Sprintf("position %d → %d", j+1, i+1),
			})
		}
	}

	// Check for removed
	for _, rule := range oldRules {
		if _, exists := newIdx[rule.ID]; !exists {
			r.RuleChanges = append(r.RuleChanges, Item{Type: "removed", ID: rule.ID, Detail: ruleLabel(rule)})
		}
	}
}

func clauseLabels(o rulebase.Override) []string {
	out := make([]string, len(o.Clauses))
	for i, c := range o.Clauses {
		out[i] = fmt.Sprintf("%s %s", c.Describe(), c.Outcome)
	}
	return out
}

func diffOverrides(r *DiffResult, oldStages, newStages []rulebase.Override) {
	oldMap := make(map[string]rulebase.Override, len(oldStages))
	for _, o := range oldStages {
		oldMap[o.ID] = o
	}
	newMap := make(map[string]bool, len(newStages))
	for _, o := range newStages {
		newMap[o.ID] = true
	}

	for _, o := range newStages {
		prev, exists := oldMap[o.ID]
		if !exists {
			r.OverrideChanges = append(r.OverrideChanges, Item{
				Type:   "added",
				ID:     o.ID,
				Detail: strings.Join(clauseLabels(o), "; "),
			})
			continue
		}
		was, now := clauseLabels(prev), clauseLabels(o)
		n := max(len(was), len(now))
		for i := 0; i < n; i++ {
			switch {
			case i >= len(was):
				r.OverrideChanges = append(r.OverrideChanges, Item{
					Type: "added", ID: fmt.Sprintf("%s#%d", o.ID, i+1), Detail: now[i],
				})
			case i >= len(now):
				r.OverrideChanges = append(r.OverrideChanges, Item{
					Type: "removed", ID: fmt.Sprintf("%s#%d", o.ID, i+1), Detail: was[i],
				})
			case was[i] != now[i]:
				r.OverrideChanges = append(r.OverrideChanges, Item{
					Type:   "changed",
					ID:     fmt.Sprintf("%s#%d", o.ID, i+1),
					Detail: fmt.Sprintf("%s (was: %s)", now[i], was[i]),
				})
			}
		}
	}

	for _, o := range oldStages {
		if !newMap[o.ID] {
			r.OverrideChanges = append(r.OverrideChanges, Item{
				Type:   "removed",
				ID:     o.ID,
				Detail: strings.Join(clauseLabels(o), "; "),
			})
		}
	}
}

func diffCatalogue(r *DiffResult, oldCats, newCats []rulebase.Category) {
	oldMap := make(map[string]rulebase.Category, len(oldCats))
	for _, c := range oldCats {
		oldMap[c.Name] = c
	}
	newSet := make(map[string]bool, len(newCats))
	for _, c := range newCats {
		newSet[c.Name] = true
	}

	for _, c := range newCats {
		prev, exists := oldMap[c.Name]
		switch {
		case !exists:
			r.CategoryChanges = append(r.CategoryChanges, Item{
				Type: "added", ID: c.Name, Detail: fmt.Sprintf("%d items", len(c.Items)),
			})
		case !sameItems(prev.Items, c.Items):
			r.CategoryChanges = append(r.CategoryChanges, Item{
				Type:   "changed",
				ID:     c.Name,
				Detail: fmt.Sprintf("%d items (was: %d)", len(c.Items), len(prev.Items)),
			})
		}
	}
	for _, c := range oldCats {
		if !newSet[c.Name] {
			r.CategoryChanges = append(r.CategoryChanges, Item{
				Type: "removed", ID: c.Name, Detail: fmt.Sprintf("%d items", len(c.Items)),
			})
		}
	}
}

func sameItems(a, b []rulebase.Mitigation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

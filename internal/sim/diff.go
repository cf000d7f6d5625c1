package sim

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DiffEntry represents one profile whose outcome changed.
type DiffEntry struct {
	ID        string `json:"id"`
	OldResult string `json:"old_result"`
	NewResult string `json:"new_result"`
	OldReason string `json:"old_reason"`
	NewReason string `json:"new_reason"`
}

// SimResult holds the complete simulation output.
type SimResult struct {
	BaselinePath     string      `json:"baseline_path"`
	CandidatePath    string      `json:"candidate_path"`
	BaselineVersion  string      `json:"baseline_version"`
	CandidateVersion string      `json:"candidate_version"`
	TotalProfiles    int         `json:"total_profiles"`
	Skipped          int         `json:"skipped"`
	ChangedProfiles  int         `json:"changed_profiles"`
	Escalated        int         `json:"escalated"`
	Relaxed          int         `json:"relaxed"`
	ErrorChanges     int         `json:"error_changes"`
	Unclassified     int         `json:"unclassified"`
	Changes          []DiffEntry `json:"changes"`
}

// FormatText renders the simulation result as human-readable text.
func FormatText(r *SimResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Simulating rule base %s against %d recorded profiles (baseline %s)...\n",
		r.CandidateVersion, r.TotalProfiles, r.BaselineVersion)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped %d unreadable lines.\n", r.Skipped)
	}

	if r.Unclassified > 0 {
		fmt.Fprintf(&b, "%d profiles failed under both rule bases (invalid or unmatched).\n", r.Unclassified)
	}

	if len(r.Changes) == 0 {
		b.WriteString("\nNo changes detected.\n")
		return b.String()
	}

	b.WriteString("\n")
	for _, d := range r.Changes {
		id := d.ID
		if len(id) > 24 {
			id = id[:21] + "..."
		}
		fmt.Fprintf(&b, "  CHANGED  %-24s %s → %s\n", id, d.OldResult, d.NewResult)
	}

	fmt.Fprintf(&b, "\n%d of %d profiles changed.", r.ChangedProfiles, r.TotalProfiles)
	if r.Escalated > 0 || r.Relaxed > 0 {
		fmt.Fprintf(&b, " %d escalated, %d relaxed.", r.Escalated, r.Relaxed)
	}
	if r.ErrorChanges > 0 {
		fmt.Fprintf(&b, " %d changed to or from an error.", r.ErrorChanges)
	}
	b.WriteString("\n")

	return b.String()
}

// FormatJSON renders the simulation result as JSON.
func FormatJSON(r *SimResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sim result: %w", err)
	}
	return string(data), nil
}

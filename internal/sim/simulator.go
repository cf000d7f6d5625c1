// Package sim replays recorded project profiles against a candidate rule
// base and reports where the classification would change.
package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/riskgate/internal/classifier"
	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Simulate classifies every profile in the JSONL file at profilesPath under
// the baseline and candidate rule bases. An empty baselinePath means the
// built-in default.
func Simulate(profilesPath, baselinePath, candidatePath string) (*SimResult, error) {
	baseline, err := rulebase.Load(baselinePath)
	if err != nil {
		return nil, fmt.Errorf("load baseline rule base: %w", err)
	}
	candidate, err := rulebase.Load(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("load candidate rule base: %w", err)
	}

	records, skipped, err := readProfiles(profilesPath)
	if err != nil {
		return nil, err
	}

	result, err := Compare(records, baseline, candidate)
	if err != nil {
		return nil, err
	}
	result.BaselinePath = baselinePath
	result.CandidatePath = candidatePath
	result.Skipped = skipped
	return result, nil
}

// Record is one replayed profile. Raw is kept as read so that invalid
// profiles are reported under both rule bases alike.
type Record struct {
	ID  string
	Raw map[string]any
}

// Compare replays records against two rule bases.
func Compare(records []Record, baseline, candidate *rulebase.RuleBase) (*SimResult, error) {
	oldEngine, err := classifier.New(baseline)
	if err != nil {
		return nil, err
	}
	newEngine, err := classifier.New(candidate)
	if err != nil {
		return nil, err
	}

	result := &SimResult{
		BaselineVersion:  baseline.Version(),
		CandidateVersion: candidate.Version(),
	}

	for _, rec := range records {
		result.TotalProfiles++

		oldOut, oldReason := outcome(oldEngine, rec.Raw)
		newOut, newReason := outcome(newEngine, rec.Raw)
		if oldOut.label == newOut.label {
			if oldOut.err {
				result.Unclassified++
			}
			continue
		}

		result.Changes = append(result.Changes, DiffEntry{
			ID:        rec.ID,
			OldResult: oldOut.label,
			NewResult: newOut.label,
			OldReason: oldReason,
			NewReason: newReason,
		})
		result.ChangedProfiles++

		switch {
		case oldOut.err || newOut.err:
			result.ErrorChanges++
		case newOut.level > oldOut.level:
			result.Escalated++
		default:
			result.Relaxed++
		}
	}

	return result, nil
}

type evalOutcome struct {
	label string
	level model.RiskLevel
	err   bool
}

func outcome(e *classifier.Engine, raw map[string]any) (evalOutcome, string) {
	p, err := model.ProfileFromMap(raw)
	if err == nil {
		var r model.Result
		r, err = e.Classify(p)
		if err == nil {
			return evalOutcome{label: r.Risk.String(), level: r.Risk}, r.Reason()
		}
	}
	return evalOutcome{label: "error:" + model.Outcome(err), err: true}, err.Error()
}

// readProfiles reads one JSON object per line. A line is either a flat
// profile or a decision log entry written by serve --audit-log, whose
// profile sits under "profile" and whose id is the request id. Lines that
// are not JSON objects are skipped and counted.
func readProfiles(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()

	var records []Record
	skipped := 0
	line := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil || raw == nil {
			skipped++
			continue
		}
		id, _ := raw["id"].(string)
		if nested, ok := raw["profile"].(map[string]any); ok {
			id, _ = raw["request_id"].(string)
			raw = nested
		}
		if id == "" {
			id = fmt.Sprintf("line %d", line)
		}
		records = append(records, Record{ID: id, Raw: raw})
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read profiles: %w", err)
	}

	return records, skipped, nil
}

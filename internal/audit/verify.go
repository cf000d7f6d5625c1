package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// VerifyResult is the outcome of walking a decision log.
type VerifyResult struct {
	Valid     bool           `json:"valid"`
	Lines     int            `json:"lines"`
	Outcomes  map[string]int `json:"outcomes,omitempty"`
	Risks     map[string]int `json:"risks,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorLine int            `json:"error_line,omitempty"`
}

// Verify checks the hash chain of the log at path and tallies outcomes.
// It stops at the first broken link.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	res := VerifyResult{
		Outcomes: map[string]int{},
		Risks:    map[string]int{},
	}
	expected := GenesisHash

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		res.Lines++
		line := scanner.Bytes()

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			res.Error = fmt.Sprintf("parse error: %v", err)
			res.ErrorLine = res.Lines
			return res
		}
		if entry.PrevHash != expected {
			if res.Lines == 1 {
				res.Error = fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", entry.PrevHash)
			} else {
				res.Error = fmt.Sprintf("hash mismatch: expected %s, got %s", expected, entry.PrevHash)
			}
			res.ErrorLine = res.Lines
			return res
		}

		res.Outcomes[entry.Outcome]++
		if entry.Risk != "" {
			res.Risks[entry.Risk]++
		}
		expected = HashLine(line)
	}
	if err := scanner.Err(); err != nil {
		res.Error = fmt.Sprintf("scan: %v", err)
		return res
	}

	res.Valid = true
	return res
}

// FormatText renders a VerifyResult for the terminal.
func FormatText(path string, r VerifyResult) string {
	var b strings.Builder
	if !r.Valid {
		if r.ErrorLine > 0 {
			fmt.Fprintf(&b, "%s: chain broken at line %d: %s\n", path, r.ErrorLine, r.Error)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", path, r.Error)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s: chain intact, %d entries\n", path, r.Lines)
	writeCounts(&b, "Outcomes", r.Outcomes)
	writeCounts(&b, "Risk levels", r.Risks)
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "  %-28s %d\n", k, counts[k])
	}
}

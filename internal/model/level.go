package model

import (
	"fmt"
	"strings"
)

// RiskLevel is the ordered financial risk classification.
// Low < Medium < High; overrides compare and shift along this order.
type RiskLevel int

const (
	Low    RiskLevel = 0
	Medium RiskLevel = 1
	High   RiskLevel = 2
)

// RiskLevels lists every level in ascending order.
var RiskLevels = []RiskLevel{Low, Medium, High}

func (l RiskLevel) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// Valid reports whether l is one of Low, Medium, High.
func (l RiskLevel) Valid() bool {
	return l >= Low && l <= High
}

// Shift moves the level by n ordinal steps, clamped to [Low, High].
func (l RiskLevel) Shift(n int) RiskLevel {
	next := int(l) + n
	if next < int(Low) {
		return Low
	}
	if next > int(High) {
		return High
	}
	return RiskLevel(next)
}

// ParseRiskLevel maps "low" / "medium" / "high" (any case) to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("unknown risk level %q", s)
	}
}

// MarshalText renders the level as its lowercase name.
func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText parses a lowercase level name.
func (l *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

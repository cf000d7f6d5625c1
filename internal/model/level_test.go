package model

import "testing"

func TestRiskLevelOrder(t *testing.T) {
	if !(Low < Medium && Medium < High) {
		t.Fatal("expected low < medium < high")
	}
}

func TestRiskLevelShiftClamps(t *testing.T) {
	tests := []struct {
		from RiskLevel
		n    int
		want RiskLevel
	}{
		{High, -1, Medium},
		{Medium, -1, Low},
		{Low, -1, Low},
		{High, -2, Low},
		{Low, 1, Medium},
		{Medium, 2, High},
		{High, 1, High},
		{Medium, 0, Medium},
	}
	for _, tt := range tests {
		if got := tt.from.Shift(tt.n); got != tt.want {
			t.Errorf("%s.Shift(%d) = %s, want %s", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestParseRiskLevel(t *testing.T) {
	for _, l := range RiskLevels {
		got, err := ParseRiskLevel(l.String())
		if err != nil || got != l {
			t.Errorf("ParseRiskLevel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if got, err := ParseRiskLevel(" HIGH "); err != nil || got != High {
		t.Errorf("expected case-insensitive parse, got %v, %v", got, err)
	}
	if _, err := ParseRiskLevel("critical"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRiskLevelText(t *testing.T) {
	b, err := Medium.MarshalText()
	if err != nil || string(b) != "medium" {
		t.Errorf("MarshalText = %q, %v", b, err)
	}
	if _, err := RiskLevel(9).MarshalText(); err == nil {
		t.Error("expected error for out-of-range level")
	}
	var l RiskLevel
	if err := l.UnmarshalText([]byte("high")); err != nil || l != High {
		t.Errorf("UnmarshalText = %v, %v", l, err)
	}
}

package rulebase

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default.yaml
var defaultYAML []byte

var defaultRuleBase = sync.OnceValue(func() *RuleBase {
	rb, err := Parse(defaultYAML, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in rule base is invalid: %v", err))
	}
	return rb
})

// Default returns the built-in calibrated rule base.
func Default() *RuleBase {
	return defaultRuleBase()
}

// DefaultYAML returns the commented built-in rule base for init-rules.
func DefaultYAML() string {
	return string(defaultYAML)
}

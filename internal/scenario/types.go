package scenario

// CaseProfile is a project profile as written in scenario files. Values
// may use canonical atoms ("fixed_price") or form labels ("Fixed Price").
type CaseProfile struct {
	MarginPercent  *float64 `yaml:"margin_percent"`
	ProjectType    string   `yaml:"project_type"`
	SIA            any      `yaml:"sia"`
	Contract       string   `yaml:"contract"`
	Relationship   string   `yaml:"relationship"`
	Client         string   `yaml:"client"`
	ExpectedProfit *float64 `yaml:"expected_profit,omitempty"`
}

// Expectation is what a case asserts. Either Risk or Error is set.
type Expectation struct {
	Risk        string   `yaml:"risk,omitempty"`
	BaseRisk    string   `yaml:"base_risk,omitempty"`
	Error       string   `yaml:"error,omitempty"`
	Overrides   []string `yaml:"overrides,omitempty"`
	Suggestions *int     `yaml:"suggestions,omitempty"`
}

// Case is one test case within a scenario.
type Case struct {
	Name    string      `yaml:"name,omitempty"`
	Profile CaseProfile `yaml:"profile"`
	Expect  Expectation `yaml:"expect"`
}

// Scenario is a named collection of classification test cases.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Name     string `json:"name,omitempty"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Reason   string `json:"reason"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File     string       `json:"file"`
	Name     string       `json:"name"`
	RuleBase string       `json:"rulebase"`
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	Cases    []CaseResult `json:"cases"`
}

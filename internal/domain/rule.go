package domain

// RuleKind distinguishes forbidden-behavior rules from must-include
// requirements in the flow-validator rule set.
type RuleKind int

const (
	RuleForbidden RuleKind = iota
	RuleMustInclude
)

// RuleIntent is the recognized meaning of a flow-validator rule, decoded
// once when the rule set is loaded. Unrecognized rule phrases map to
// IntentUnknown and never produce violations.
type RuleIntent int

const (
	IntentUnknown RuleIntent = iota
	IntentPriceWithoutFact
	IntentLegalWithoutFact
	IntentStopRequiredOnPrice
	IntentStopRequiredOnLegal
)

// FlowRule is one decoded rule from the flow-validator configuration.
type FlowRule struct {
	Kind   RuleKind   `json:"kind"`
	Intent RuleIntent `json:"intent"`

	// Text is the original rule string, quoted verbatim in violation
	// messages.
	Text string `json:"text"`
}

// RuleSet holds the decoded flow-validator rules in configuration order
// (forbidden rules first, then must-include rules).
type RuleSet struct {
	Rules []FlowRule `json:"rules"`
}

// CheckConfig defines a custom CEL check evaluated against a scored result.
// The expression must evaluate to bool; a true outcome appends Message to
// the result's violations.
type CheckConfig struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Message    string `json:"message"`
	Enabled    bool   `json:"enabled"`
}

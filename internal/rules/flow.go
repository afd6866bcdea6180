// Package rules provides declarative violation evaluation for scored logs:
// the flow validator for the configured rule set and the CEL-based check
// engine for custom checks.
package rules

import (
	"log/slog"
	"strings"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// FlowValidator evaluates decoded flow rules against a scored result.
// Rule strings are decoded into intents once at load time, so evaluation
// is a plain switch per rule with no string scanning.
type FlowValidator struct {
	rules []domain.FlowRule
}

// NewFlowValidator creates a validator over an already-decoded rule set.
// A nil rule set yields a validator that never produces violations.
func NewFlowValidator(set *domain.RuleSet) *FlowValidator {
	if set == nil {
		return &FlowValidator{}
	}
	return &FlowValidator{rules: set.Rules}
}

// DecodeRuleSet decodes raw forbidden/must-include rule strings into tagged
// intents, preserving configuration order (forbidden first).
func DecodeRuleSet(forbidden, mustInclude []string) *domain.RuleSet {
	set := &domain.RuleSet{}
	for _, text := range forbidden {
		set.Rules = append(set.Rules, decodeRule(domain.RuleForbidden, text))
	}
	for _, text := range mustInclude {
		set.Rules = append(set.Rules, decodeRule(domain.RuleMustInclude, text))
	}
	return set
}

func decodeRule(kind domain.RuleKind, text string) domain.FlowRule {
	rule := domain.FlowRule{
		Kind:   kind,
		Intent: decodeIntent(kind, text),
		Text:   text,
	}
	if rule.Intent == domain.IntentUnknown {
		slog.Debug("flow rule has no recognized intent, it will never match",
			"rule", text,
		)
	}
	return rule
}

func decodeIntent(kind domain.RuleKind, text string) domain.RuleIntent {
	lower := strings.ToLower(text)
	switch kind {
	case domain.RuleForbidden:
		if strings.Contains(lower, "price estimates without fact") {
			return domain.IntentPriceWithoutFact
		}
		if strings.Contains(lower, "legal promises without fact") {
			return domain.IntentLegalWithoutFact
		}
	case domain.RuleMustInclude:
		if strings.Contains(lower, "stop_required on price") {
			return domain.IntentStopRequiredOnPrice
		}
		if strings.Contains(lower, "stop_required on legal") {
			return domain.IntentStopRequiredOnLegal
		}
	}
	return domain.IntentUnknown
}

// RuleCount returns the number of loaded rules, unknown intents included.
func (v *FlowValidator) RuleCount() int {
	return len(v.rules)
}

// Evaluate returns the violation messages for a scored result, in rule
// order. Forbidden rules report "Verstoß:", missing requirements "Fehlend:".
func (v *FlowValidator) Evaluate(res *domain.ScoreResult) []string {
	var violations []string
	for _, rule := range v.rules {
		triggered := false
		switch rule.Intent {
		case domain.IntentPriceWithoutFact, domain.IntentStopRequiredOnPrice:
			triggered = res.PriceClaim && !res.StopTriggered
		case domain.IntentLegalWithoutFact, domain.IntentStopRequiredOnLegal:
			triggered = res.LegalClaim && !res.StopTriggered
		}
		if !triggered {
			continue
		}
		switch rule.Kind {
		case domain.RuleForbidden:
			violations = append(violations, "Verstoß: "+rule.Text)
		case domain.RuleMustInclude:
			violations = append(violations, "Fehlend: "+rule.Text)
		}
	}
	return violations
}

package rules

import (
	"reflect"
	"testing"

	"github.com/opensource-agents/kestrel/internal/domain"
)

func TestDecodeRuleSetIntents(t *testing.T) {
	set := DecodeRuleSet(
		[]string{
			"No price estimates without fact basis",
			"No legal promises without fact basis",
			"Agents must be polite",
		},
		[]string{
			"STOP_REQUIRED on price questions",
			"STOP_REQUIRED on legal questions",
		},
	)

	wantIntents := []domain.RuleIntent{
		domain.IntentPriceWithoutFact,
		domain.IntentLegalWithoutFact,
		domain.IntentUnknown,
		domain.IntentStopRequiredOnPrice,
		domain.IntentStopRequiredOnLegal,
	}

	if len(set.Rules) != len(wantIntents) {
		t.Fatalf("expected %d rules, got %d", len(wantIntents), len(set.Rules))
	}
	for i, want := range wantIntents {
		if set.Rules[i].Intent != want {
			t.Errorf("rule %d: got intent %v, want %v", i, set.Rules[i].Intent, want)
		}
	}
}

func TestDecodePreservesOrderAndKind(t *testing.T) {
	set := DecodeRuleSet([]string{"forbidden rule"}, []string{"required rule"})

	if set.Rules[0].Kind != domain.RuleForbidden || set.Rules[0].Text != "forbidden rule" {
		t.Errorf("unexpected first rule: %+v", set.Rules[0])
	}
	if set.Rules[1].Kind != domain.RuleMustInclude || set.Rules[1].Text != "required rule" {
		t.Errorf("unexpected second rule: %+v", set.Rules[1])
	}
}

func TestEvaluateNoRuleSet(t *testing.T) {
	v := NewFlowValidator(nil)

	res := &domain.ScoreResult{PriceClaim: true, LegalClaim: true}
	if got := v.Evaluate(res); got != nil {
		t.Errorf("expected no violations without a rule set, got %v", got)
	}
}

func TestEvaluateViolations(t *testing.T) {
	set := DecodeRuleSet(
		[]string{
			"No price estimates without fact basis",
			"No legal promises without fact basis",
		},
		[]string{
			"STOP_REQUIRED on price questions",
			"STOP_REQUIRED on legal questions",
		},
	)
	v := NewFlowValidator(set)

	tests := []struct {
		name string
		res  domain.ScoreResult
		want []string
	}{
		{
			name: "price claim without stop",
			res:  domain.ScoreResult{PriceClaim: true},
			want: []string{
				"Verstoß: No price estimates without fact basis",
				"Fehlend: STOP_REQUIRED on price questions",
			},
		},
		{
			name: "legal claim without stop",
			res:  domain.ScoreResult{LegalClaim: true},
			want: []string{
				"Verstoß: No legal promises without fact basis",
				"Fehlend: STOP_REQUIRED on legal questions",
			},
		},
		{
			name: "stop suppresses all violations",
			res:  domain.ScoreResult{PriceClaim: true, LegalClaim: true, StopTriggered: true},
			want: nil,
		},
		{
			name: "no claims no violations",
			res:  domain.ScoreResult{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Evaluate(&tt.res)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnknownIntentNeverFires(t *testing.T) {
	set := DecodeRuleSet([]string{"Agents must always be friendly"}, nil)
	v := NewFlowValidator(set)

	res := &domain.ScoreResult{PriceClaim: true, LegalClaim: true}
	if got := v.Evaluate(res); got != nil {
		t.Errorf("unknown intent must not produce violations, got %v", got)
	}
	if v.RuleCount() != 1 {
		t.Errorf("unknown rules still count as loaded, got %d", v.RuleCount())
	}
}

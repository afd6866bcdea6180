package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/opensource-agents/kestrel/internal/domain"
)

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	def := domain.DefaultConfig()
	if !reflect.DeepEqual(cfg.PriceKeywords, def.PriceKeywords) {
		t.Errorf("expected default price keywords, got %v", cfg.PriceKeywords)
	}
	if cfg.RiskThresholds != def.RiskThresholds {
		t.Errorf("expected default thresholds, got %+v", cfg.RiskThresholds)
	}
}

func TestLoadMalformedYAMLFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("keywords: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.PlaceholderBonus != -1 {
		t.Errorf("expected default placeholder bonus, got %d", cfg.PlaceholderBonus)
	}
}

func TestParseOverrides(t *testing.T) {
	doc := []byte(`
keywords:
  price: ["preis", "euro"]
  legal: ["gesetz"]
risk_thresholds:
  low: 0
  medium: 2
  high: 4
  critical: 6
scoring:
  placeholder_bonus: -2
flow_validator:
  forbidden:
    - "No price estimates without fact basis"
  must_include:
    - "STOP_REQUIRED on legal questions"
`)

	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.PriceKeywords, []string{"preis", "euro"}) {
		t.Errorf("price keywords not overridden: %v", cfg.PriceKeywords)
	}
	if !reflect.DeepEqual(cfg.LegalKeywords, []string{"gesetz"}) {
		t.Errorf("legal keywords not overridden: %v", cfg.LegalKeywords)
	}
	if cfg.RiskThresholds.Medium != 2 || cfg.RiskThresholds.High != 4 {
		t.Errorf("thresholds not overridden: %+v", cfg.RiskThresholds)
	}
	if cfg.PlaceholderBonus != -2 {
		t.Errorf("bonus not overridden: %d", cfg.PlaceholderBonus)
	}

	if cfg.RuleSet == nil || len(cfg.RuleSet.Rules) != 2 {
		t.Fatalf("rule set not decoded: %+v", cfg.RuleSet)
	}
	if cfg.RuleSet.Rules[0].Intent != domain.IntentPriceWithoutFact {
		t.Errorf("unexpected first intent: %v", cfg.RuleSet.Rules[0].Intent)
	}
	if cfg.RuleSet.Rules[1].Intent != domain.IntentStopRequiredOnLegal {
		t.Errorf("unexpected second intent: %v", cfg.RuleSet.Rules[1].Intent)
	}
}

func TestParsePartialThresholds(t *testing.T) {
	cfg, err := Parse([]byte("risk_thresholds:\n  medium: 3\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// Unlisted bounds keep their defaults
	if cfg.RiskThresholds.Low != 0 || cfg.RiskThresholds.Medium != 3 || cfg.RiskThresholds.High != 2 {
		t.Errorf("unexpected thresholds: %+v", cfg.RiskThresholds)
	}
}

func TestParseNonMonotonicThresholdsAccepted(t *testing.T) {
	cfg, err := Parse([]byte("risk_thresholds:\n  low: 5\n  medium: 1\n  high: 2\n"))
	if err != nil {
		t.Fatalf("misordered thresholds must be accepted: %v", err)
	}
	if cfg.RiskThresholds.Low != 5 || cfg.RiskThresholds.Medium != 1 {
		t.Errorf("thresholds not applied verbatim: %+v", cfg.RiskThresholds)
	}
}

func TestParseChecks(t *testing.T) {
	doc := []byte(`
checks:
  - name: unstopped-claim
    expression: "price_claim && !stop_triggered"
    message: "Check: Preisaussage ohne STOP"
  - name: off
    expression: "true"
    enabled: false
`)

	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(cfg.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(cfg.Checks))
	}
	// Enabled defaults to true when omitted
	if !cfg.Checks[0].Enabled {
		t.Error("first check should default to enabled")
	}
	if cfg.Checks[1].Enabled {
		t.Error("second check is explicitly disabled")
	}
}

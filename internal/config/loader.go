// Package config loads scoring configuration from YAML documents.
//
// Loading never fails hard: a missing or malformed file falls back to the
// built-in defaults with a logged warning, so a broken deployment still
// scores with sane settings.
package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opensource-agents/kestrel/internal/domain"
	"github.com/opensource-agents/kestrel/internal/rules"
)

// fileConfig mirrors the YAML document shape.
type fileConfig struct {
	Keywords struct {
		Price []string `yaml:"price"`
		Legal []string `yaml:"legal"`
	} `yaml:"keywords"`

	RiskThresholds map[string]int `yaml:"risk_thresholds"`

	Scoring struct {
		PlaceholderBonus *int `yaml:"placeholder_bonus"`
	} `yaml:"scoring"`

	FlowValidator *struct {
		Forbidden   []string `yaml:"forbidden"`
		MustInclude []string `yaml:"must_include"`
	} `yaml:"flow_validator"`

	Checks []fileCheck `yaml:"checks"`
}

type fileCheck struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Message    string `yaml:"message"`
	Enabled    *bool  `yaml:"enabled"`
}

// Load reads a YAML configuration file and returns the resulting scoring
// configuration. Every recognized group overrides the corresponding
// default; unrecognized keys are ignored.
func Load(path string) *domain.ScoringConfig {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config file not readable, using defaults",
			"path", path,
			"error", err,
		)
		return cfg
	}

	parsed, err := Parse(data)
	if err != nil {
		slog.Error("failed to parse config file, using defaults",
			"path", path,
			"error", err,
		)
		return cfg
	}

	slog.Info("configuration loaded",
		"path", path,
		"price_keywords", len(parsed.PriceKeywords),
		"legal_keywords", len(parsed.LegalKeywords),
		"checks", len(parsed.Checks),
	)
	return parsed
}

// Parse decodes a YAML configuration document over the defaults.
func Parse(data []byte) (*domain.ScoringConfig, error) {
	cfg := domain.DefaultConfig()

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	if len(fc.Keywords.Price) > 0 {
		cfg.PriceKeywords = fc.Keywords.Price
	}
	if len(fc.Keywords.Legal) > 0 {
		cfg.LegalKeywords = fc.Keywords.Legal
	}

	if fc.RiskThresholds != nil {
		applyThresholds(&cfg.RiskThresholds, fc.RiskThresholds)
	}

	if fc.Scoring.PlaceholderBonus != nil {
		cfg.PlaceholderBonus = *fc.Scoring.PlaceholderBonus
	}

	if fc.FlowValidator != nil {
		cfg.RuleSet = rules.DecodeRuleSet(fc.FlowValidator.Forbidden, fc.FlowValidator.MustInclude)
	}

	for _, c := range fc.Checks {
		cfg.Checks = append(cfg.Checks, domain.CheckConfig{
			Name:       c.Name,
			Expression: c.Expression,
			Message:    c.Message,
			Enabled:    c.Enabled == nil || *c.Enabled,
		})
	}

	return cfg, nil
}

func applyThresholds(t *domain.Thresholds, raw map[string]int) {
	if v, ok := raw["low"]; ok {
		t.Low = v
	}
	if v, ok := raw["medium"]; ok {
		t.Medium = v
	}
	if v, ok := raw["high"]; ok {
		t.High = v
	}
	if v, ok := raw["critical"]; ok {
		t.Critical = v
	}

	// Misordered bounds produce a non-monotonic classification. Accepted
	// for compatibility, but worth a loud warning.
	if t.Medium < t.Low || t.High < t.Medium {
		slog.Warn("risk thresholds are not monotonically non-decreasing",
			"low", t.Low,
			"medium", t.Medium,
			"high", t.High,
		)
	}
}

package domain

// ScoringConfig holds the complete scoring configuration.
// A config is constructed once per run and read-only thereafter;
// reloading produces a new instance.
type ScoringConfig struct {
	// Keyword lists for claim detection (case-insensitive substrings)
	PriceKeywords []string `json:"priceKeywords"`
	LegalKeywords []string `json:"legalKeywords"`

	// Score-to-level mapping
	RiskThresholds Thresholds `json:"riskThresholds"`

	// Adjustment applied when a placeholder deferral accompanies a claim
	PlaceholderBonus int `json:"placeholderBonus"`

	// Optional flow-validator rules, decoded at load time
	RuleSet *RuleSet `json:"ruleSet,omitempty"`

	// Optional CEL checks evaluated against scored results
	Checks []CheckConfig `json:"checks,omitempty"`
}

// Thresholds maps each level to an inclusive upper-bound score.
// Classification expects the bounds to be non-decreasing low through
// critical; the loader warns about misordered bounds but accepts them.
type Thresholds struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Classify walks the bounds in ascending order and returns the first level
// whose bound covers the score. Scores above the high bound are CRITICAL.
func (t Thresholds) Classify(score int) RiskLevel {
	switch {
	case score <= t.Low:
		return LevelLow
	case score <= t.Medium:
		return LevelMedium
	case score <= t.High:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// DefaultConfig returns the built-in scoring configuration.
func DefaultConfig() *ScoringConfig {
	return &ScoringConfig{
		PriceKeywords: []string{
			"€", "euro", "preis", "kostet", "kosten", "gebühr", "tarif", "$", "usd", "chf",
		},
		LegalKeywords: []string{
			"gesetz", "rechtlich", "erlaubt", "illegal", "legal", "vorschrift", "verordnung", "recht",
		},
		RiskThresholds: Thresholds{
			Low:      0,
			Medium:   1,
			High:     2,
			Critical: 3,
		},
		PlaceholderBonus: -1,
	}
}

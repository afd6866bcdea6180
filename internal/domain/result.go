package domain

// ScoreResult is the outcome of scoring a single interaction log.
// It is built in one construction step by the scorer (violations included)
// and never mutated afterwards.
type ScoreResult struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	Contact   string `json:"contact,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	PriceClaim         bool     `json:"price_claim"`
	PriceKeywordsFound []string `json:"price_keywords_found"`
	LegalClaim         bool     `json:"legal_claim"`
	LegalKeywordsFound []string `json:"legal_keywords_found"`

	StopTriggered   bool `json:"stop_triggered"`
	PlaceholderUsed bool `json:"placeholder_used"`

	Risk       int       `json:"risk"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Violations []string  `json:"violations"`
}

// IsCritical reports whether the result requires supervisor attention.
func (r *ScoreResult) IsCritical() bool {
	return r.RiskLevel >= LevelHigh
}

// Package scorer implements the interaction-log scoring pipeline:
// validation, transcript extraction, keyword matching, score computation,
// risk-level classification and violation evaluation.
package scorer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/opensource-agents/kestrel/internal/domain"
	"github.com/opensource-agents/kestrel/internal/rules"
)

// Placeholder markers in the agent's result text that indicate a deferred
// response instead of an asserted claim.
const (
	markerPlaceholder  = "PLACEHOLDER"
	markerStopRequired = "STOP_REQUIRED"
)

// Scorer scores decoded interaction logs against one immutable
// configuration. It is stateless apart from that configuration and safe
// for concurrent use.
type Scorer struct {
	cfg    *domain.ScoringConfig
	flow   *rules.FlowValidator
	checks *rules.CheckEngine
}

// New creates a scorer. A nil config selects the built-in defaults.
func New(cfg *domain.ScoringConfig) (*Scorer, error) {
	if cfg == nil {
		cfg = domain.DefaultConfig()
	}

	s := &Scorer{cfg: cfg}

	if cfg.RuleSet != nil {
		s.flow = rules.NewFlowValidator(cfg.RuleSet)
	}

	if len(cfg.Checks) > 0 {
		engine, err := rules.NewCheckEngine()
		if err != nil {
			return nil, err
		}
		if err := engine.LoadChecks(cfg.Checks); err != nil {
			return nil, fmt.Errorf("failed to load checks: %w", err)
		}
		s.checks = engine
	}

	return s, nil
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() *domain.ScoringConfig {
	return s.cfg
}

// Validate checks the structure of a decoded log record: it must be a keyed
// structure with an agent_id, and transcript, when present, must be a
// sequence. No other fields are validated. Pure check, no side effects.
func Validate(log any) error {
	m, ok := log.(map[string]any)
	if !ok {
		return &domain.ValidationError{Kind: domain.NotAMapping}
	}
	if _, ok := m["agent_id"]; !ok {
		return &domain.ValidationError{Kind: domain.MissingField, Field: "agent_id"}
	}
	if raw, present := m["transcript"]; present {
		if _, ok := raw.([]any); !ok {
			return &domain.ValidationError{Kind: domain.WrongType, Field: "transcript", Expected: "sequence"}
		}
	}
	return nil
}

// ExtractTranscript concatenates the transcript text in entry order, joined
// with single spaces. Entries are either plain strings or keyed structures
// carrying a "text" field (missing text contributes an empty part). A
// missing or empty transcript yields the empty string.
func ExtractTranscript(log map[string]any) string {
	entries, _ := log["transcript"].([]any)
	var parts []string
	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			parts = append(parts, e)
		case map[string]any:
			text, _ := e["text"].(string)
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// MatchKeywords performs a case-insensitive substring search and returns
// whether any keyword matched plus the matches in keyword-list order.
// Matching the same text twice yields identical results.
func MatchKeywords(text string, keywords []string) (bool, []string) {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return len(found) > 0, found
}

// Score validates and scores a single decoded log record. Validation
// failures are returned to the caller; everything else always produces a
// finished result with violations populated.
func (s *Scorer) Score(log any) (*domain.ScoreResult, error) {
	if err := Validate(log); err != nil {
		slog.Error("log validation failed", "error", err)
		return nil, err
	}
	m := log.(map[string]any)

	transcript := ExtractTranscript(m)

	priceFound, priceKeywords := MatchKeywords(transcript, s.cfg.PriceKeywords)
	legalFound, legalKeywords := MatchKeywords(transcript, s.cfg.LegalKeywords)

	// Exported results carry empty lists, not null
	if priceKeywords == nil {
		priceKeywords = []string{}
	}
	if legalKeywords == nil {
		legalKeywords = []string{}
	}

	stopTriggered, _ := m["stop_triggered"].(bool)
	resultText := stringField(m, "result")
	placeholderUsed := strings.Contains(resultText, markerPlaceholder) ||
		strings.Contains(resultText, markerStopRequired)

	risk := 0
	if priceFound {
		risk++
	}
	if legalFound {
		risk++
	}
	if stopTriggered {
		risk--
	}
	// The bonus only applies when a claim was actually deferred; a
	// placeholder marker with no detected claim has no scoring effect.
	if placeholderUsed && (priceFound || legalFound) {
		risk += s.cfg.PlaceholderBonus
	}
	if risk < 0 {
		risk = 0
	}

	result := &domain.ScoreResult{
		ID:                 uuid.New().String(),
		AgentID:            stringField(m, "agent_id"),
		Contact:            stringField(m, "contact_name"),
		Timestamp:          stringField(m, "timestamp"),
		PriceClaim:         priceFound,
		PriceKeywordsFound: priceKeywords,
		LegalClaim:         legalFound,
		LegalKeywordsFound: legalKeywords,
		StopTriggered:      stopTriggered,
		PlaceholderUsed:    placeholderUsed,
		Risk:               risk,
		RiskLevel:          s.cfg.RiskThresholds.Classify(risk),
		Violations:         []string{},
	}

	if s.flow != nil {
		result.Violations = append(result.Violations, s.flow.Evaluate(result)...)
	}
	if s.checks != nil {
		result.Violations = append(result.Violations, s.checks.EvaluateAll(result)...)
	}

	slog.Debug("log scored",
		"agent_id", result.AgentID,
		"risk", result.Risk,
		"risk_level", result.RiskLevel.String(),
		"violations", len(result.Violations),
	)

	return result, nil
}

// stringField reads an optional field, coercing non-string values to their
// printed form. Missing and nil values read as "".
func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

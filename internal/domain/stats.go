package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// AgentStatistics is the running aggregate for one agent. Instances are
// owned by a stats.Aggregator and live for the process lifetime; they are
// only ever reset in bulk, never destroyed individually.
type AgentStatistics struct {
	AgentID           string         `json:"agent_id"`
	TotalInteractions int            `json:"total_interactions"`
	TotalRiskScore    int            `json:"total_risk_score"`
	PriceClaims       int            `json:"price_claims"`
	LegalClaims       int            `json:"legal_claims"`
	StopsTriggered    int            `json:"stops_triggered"`
	PlaceholdersUsed  int            `json:"placeholders_used"`
	CriticalIncidents int            `json:"critical_incidents"`
	RiskLevels        map[string]int `json:"risk_distribution"`
}

// NewAgentStatistics returns a zeroed aggregate with the level histogram
// pre-populated so every level appears in serialized output.
func NewAgentStatistics(agentID string) *AgentStatistics {
	histogram := make(map[string]int, len(levelNames))
	for _, l := range Levels() {
		histogram[l.String()] = 0
	}
	return &AgentStatistics{
		AgentID:    agentID,
		RiskLevels: histogram,
	}
}

// AverageRisk is the mean risk score across all observed interactions,
// 0 when nothing has been observed.
func (s *AgentStatistics) AverageRisk() float64 {
	if s.TotalInteractions == 0 {
		return 0.0
	}
	return float64(s.TotalRiskScore) / float64(s.TotalInteractions)
}

// StopRate is the ratio of stops to detected claims. An agent with no
// claims has nothing to stop for and counts as fully compliant (1.0).
func (s *AgentStatistics) StopRate() float64 {
	claims := s.PriceClaims + s.LegalClaims
	if claims == 0 {
		return 1.0
	}
	return float64(s.StopsTriggered) / float64(claims)
}

// MarshalJSON adds the derived rates to the serialized form: average_risk
// rounded to two decimals, stop_rate as a percent string.
func (s *AgentStatistics) MarshalJSON() ([]byte, error) {
	type plain AgentStatistics
	return json.Marshal(struct {
		*plain
		AverageRisk float64 `json:"average_risk"`
		StopRate    string  `json:"stop_rate"`
	}{
		plain:       (*plain)(s),
		AverageRisk: math.Round(s.AverageRisk()*100) / 100,
		StopRate:    fmt.Sprintf("%.1f%%", s.StopRate()*100),
	})
}

// Clone returns an independent copy, histogram included.
func (s *AgentStatistics) Clone() *AgentStatistics {
	out := *s
	out.RiskLevels = make(map[string]int, len(s.RiskLevels))
	for k, v := range s.RiskLevels {
		out.RiskLevels[k] = v
	}
	return &out
}

// Package alert raises alerts for scoring results at or above a risk
// threshold.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// Alert is one recorded alert for a critical scoring result.
type Alert struct {
	ID         string           `json:"id"`
	Timestamp  string           `json:"timestamp"`
	AgentID    string           `json:"agent_id"`
	RiskLevel  domain.RiskLevel `json:"risk_level"`
	RiskScore  int              `json:"risk_score"`
	Violations []string         `json:"violations"`
	Message    string           `json:"message"`
}

// System collects alerts for results at or above its threshold and
// publishes them to the alert topic when a bus is attached.
type System struct {
	mu        sync.Mutex
	threshold domain.RiskLevel
	bus       domain.EventBus
	alerts    []Alert
}

// NewSystem creates an alert system. The bus may be nil, in which case
// alerts are only recorded and logged.
func NewSystem(threshold domain.RiskLevel, bus domain.EventBus) *System {
	return &System{
		threshold: threshold,
		bus:       bus,
	}
}

// Check raises an alert when the result's level reaches the threshold and
// reports whether it did.
func (s *System) Check(ctx context.Context, res *domain.ScoreResult) bool {
	if res.RiskLevel < s.threshold {
		return false
	}

	a := Alert{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		AgentID:    res.AgentID,
		RiskLevel:  res.RiskLevel,
		RiskScore:  res.Risk,
		Violations: res.Violations,
		Message:    fmt.Sprintf("ALERT: Agent %s hat Risk-Level %s", res.AgentID, res.RiskLevel),
	}

	s.mu.Lock()
	s.alerts = append(s.alerts, a)
	s.mu.Unlock()

	slog.Warn("alert raised",
		"agent_id", a.AgentID,
		"risk_level", a.RiskLevel.String(),
		"risk_score", a.RiskScore,
	)

	if s.bus != nil {
		payload, _ := json.Marshal(a)
		if err := s.bus.Publish(ctx, domain.TopicAlert, payload); err != nil {
			slog.Error("failed to publish alert",
				"agent_id", a.AgentID,
				"error", err,
			)
		}
	}

	return true
}

// Alerts returns a copy of all recorded alerts.
func (s *System) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Clear drops all recorded alerts.
func (s *System) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = nil
}

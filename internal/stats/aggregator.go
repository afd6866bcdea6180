// Package stats maintains running per-agent scoring aggregates.
package stats

import (
	"sync"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// Aggregator consumes scored results and keeps per-agent counters.
// Observations are guarded by a mutex so concurrent batch workers can
// funnel results into a single instance. Later results never revise
// earlier aggregates.
type Aggregator struct {
	mu     sync.Mutex
	agents map[string]*domain.AgentStatistics
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		agents: make(map[string]*domain.AgentStatistics),
	}
}

// Observe folds one scored result into the owning agent's aggregate,
// creating the aggregate on first observation.
func (a *Aggregator) Observe(res *domain.ScoreResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	agent, ok := a.agents[res.AgentID]
	if !ok {
		agent = domain.NewAgentStatistics(res.AgentID)
		a.agents[res.AgentID] = agent
	}

	agent.TotalInteractions++
	agent.TotalRiskScore += res.Risk
	agent.RiskLevels[res.RiskLevel.String()]++

	if res.PriceClaim {
		agent.PriceClaims++
	}
	if res.LegalClaim {
		agent.LegalClaims++
	}
	if res.StopTriggered {
		agent.StopsTriggered++
	}
	if res.PlaceholderUsed {
		agent.PlaceholdersUsed++
	}
	if res.IsCritical() {
		agent.CriticalIncidents++
	}
}

// Agent returns a copy of one agent's aggregate.
func (a *Aggregator) Agent(agentID string) (*domain.AgentStatistics, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	agent, ok := a.agents[agentID]
	if !ok {
		return nil, false
	}
	return agent.Clone(), true
}

// Snapshot returns an independent copy of all per-agent aggregates.
func (a *Aggregator) Snapshot() map[string]*domain.AgentStatistics {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]*domain.AgentStatistics, len(a.agents))
	for id, agent := range a.agents {
		out[id] = agent.Clone()
	}
	return out
}

// AgentCount returns the number of distinct agents observed.
func (a *Aggregator) AgentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.agents)
}

// Reset clears all per-agent aggregates; used between independent analysis
// runs sharing one aggregator.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.agents = make(map[string]*domain.AgentStatistics)
}

package stats

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/opensource-agents/kestrel/internal/domain"
)

func result(agentID string, risk int, level domain.RiskLevel) *domain.ScoreResult {
	return &domain.ScoreResult{
		AgentID:   agentID,
		Risk:      risk,
		RiskLevel: level,
	}
}

func TestObserveAverageRisk(t *testing.T) {
	agg := NewAggregator()

	for _, risk := range []int{0, 1, 2, 3} {
		agg.Observe(result("AGENT_001", risk, domain.DefaultConfig().RiskThresholds.Classify(risk)))
	}

	agent, ok := agg.Agent("AGENT_001")
	if !ok {
		t.Fatal("agent not found")
	}
	if agent.TotalInteractions != 4 {
		t.Errorf("expected 4 interactions, got %d", agent.TotalInteractions)
	}
	if got := agent.AverageRisk(); got != 1.5 {
		t.Errorf("expected average risk 1.5, got %v", got)
	}
}

func TestAverageRiskZeroInteractions(t *testing.T) {
	agent := domain.NewAgentStatistics("AGENT_001")
	if got := agent.AverageRisk(); got != 0.0 {
		t.Errorf("expected 0.0 with no interactions, got %v", got)
	}
}

func TestStopRateConvention(t *testing.T) {
	agent := domain.NewAgentStatistics("AGENT_001")

	// No claims means full compliance by convention
	if got := agent.StopRate(); got != 1.0 {
		t.Errorf("expected stop rate 1.0 with no claims, got %v", got)
	}

	agent.PriceClaims = 3
	agent.LegalClaims = 1
	agent.StopsTriggered = 2
	if got := agent.StopRate(); got != 0.5 {
		t.Errorf("expected stop rate 0.5, got %v", got)
	}
}

func TestObserveCounters(t *testing.T) {
	agg := NewAggregator()

	agg.Observe(&domain.ScoreResult{
		AgentID:         "AGENT_001",
		PriceClaim:      true,
		StopTriggered:   true,
		PlaceholderUsed: true,
		Risk:            0,
		RiskLevel:       domain.LevelLow,
	})
	agg.Observe(&domain.ScoreResult{
		AgentID:    "AGENT_001",
		PriceClaim: true,
		LegalClaim: true,
		Risk:       2,
		RiskLevel:  domain.LevelHigh,
	})

	agent, _ := agg.Agent("AGENT_001")
	if agent.PriceClaims != 2 {
		t.Errorf("expected 2 price claims, got %d", agent.PriceClaims)
	}
	if agent.LegalClaims != 1 {
		t.Errorf("expected 1 legal claim, got %d", agent.LegalClaims)
	}
	if agent.StopsTriggered != 1 {
		t.Errorf("expected 1 stop, got %d", agent.StopsTriggered)
	}
	if agent.PlaceholdersUsed != 1 {
		t.Errorf("expected 1 placeholder, got %d", agent.PlaceholdersUsed)
	}
	if agent.CriticalIncidents != 1 {
		t.Errorf("HIGH counts as critical, got %d incidents", agent.CriticalIncidents)
	}
	if agent.RiskLevels["LOW"] != 1 || agent.RiskLevels["HIGH"] != 1 {
		t.Errorf("unexpected histogram: %v", agent.RiskLevels)
	}
}

func TestStatisticsJSONIncludesRates(t *testing.T) {
	agg := NewAggregator()

	agg.Observe(&domain.ScoreResult{
		AgentID:       "AGENT_001",
		PriceClaim:    true,
		StopTriggered: true,
		Risk:          1,
		RiskLevel:     domain.LevelMedium,
	})
	agg.Observe(&domain.ScoreResult{
		AgentID:    "AGENT_001",
		PriceClaim: true,
		Risk:       2,
		RiskLevel:  domain.LevelHigh,
	})

	agent, _ := agg.Agent("AGENT_001")
	data, err := json.Marshal(agent)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// Derived rates are part of the serialized form
	if !strings.Contains(string(data), `"average_risk":1.5`) {
		t.Errorf("serialized statistics missing average_risk: %s", data)
	}
	if !strings.Contains(string(data), `"stop_rate":"50.0%"`) {
		t.Errorf("serialized statistics missing stop_rate: %s", data)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	agg := NewAggregator()
	agg.Observe(result("AGENT_001", 1, domain.LevelMedium))

	snap := agg.Snapshot()
	snap["AGENT_001"].TotalRiskScore = 999
	snap["AGENT_001"].RiskLevels["MEDIUM"] = 999

	agent, _ := agg.Agent("AGENT_001")
	if agent.TotalRiskScore != 1 || agent.RiskLevels["MEDIUM"] != 1 {
		t.Error("snapshot mutation leaked into the aggregator")
	}
}

func TestReset(t *testing.T) {
	agg := NewAggregator()
	agg.Observe(result("AGENT_001", 1, domain.LevelMedium))
	agg.Observe(result("AGENT_002", 2, domain.LevelHigh))

	if agg.AgentCount() != 2 {
		t.Fatalf("expected 2 agents, got %d", agg.AgentCount())
	}

	agg.Reset()

	if agg.AgentCount() != 0 {
		t.Errorf("expected 0 agents after reset, got %d", agg.AgentCount())
	}
	if _, ok := agg.Agent("AGENT_001"); ok {
		t.Error("agent should be gone after reset")
	}
}

func TestConcurrentObserve(t *testing.T) {
	agg := NewAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Observe(result("AGENT_001", 1, domain.LevelMedium))
		}()
	}
	wg.Wait()

	agent, _ := agg.Agent("AGENT_001")
	if agent.TotalInteractions != 50 {
		t.Errorf("expected 50 interactions, got %d", agent.TotalInteractions)
	}
}

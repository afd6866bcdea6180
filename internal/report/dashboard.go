package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// maxDashboardIssues caps the issue list at the ten most recent findings.
const maxDashboardIssues = 10

// DashboardIssue is one flagged interaction on the supervisor dashboard.
type DashboardIssue struct {
	AgentID   string `json:"agent_id"`
	Issue     string `json:"issue"`
	Risk      string `json:"risk"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AgentReview flags an agent whose aggregate performance needs attention.
type AgentReview struct {
	AgentID           string  `json:"agent_id"`
	AverageRisk       float64 `json:"average_risk"`
	CriticalIncidents int     `json:"critical_incidents"`
	Recommendation    string  `json:"recommendation"`
}

// DashboardSummary is the aggregate block of the dashboard.
type DashboardSummary struct {
	AverageRisk        float64 `json:"average_risk"`
	TotalViolations    int     `json:"total_violations"`
	StopComplianceRate string  `json:"stop_compliance_rate"`
}

// Dashboard is the supervisor dashboard document.
type Dashboard struct {
	Date                     string           `json:"date"`
	AgentsActive             int              `json:"agents_active"`
	TotalInteractions        int              `json:"total_interactions"`
	StoppedCallsToday        int              `json:"stopped_calls_today"`
	PotentialIssues          []DashboardIssue `json:"potential_issues"`
	AgentsRequiringReview    []AgentReview    `json:"agents_requiring_review"`
	ActionRequired           bool             `json:"action_required"`
	Summary                  DashboardSummary `json:"summary"`
	SupervisorRecommendation string           `json:"supervisor_recommendation"`
}

// dashboardDocument wraps the dashboard under its top-level key.
type dashboardDocument struct {
	SupervisorDashboard *Dashboard `json:"supervisor_dashboard"`
}

// GenerateDashboard builds the supervisor dashboard from scored results and
// the per-agent statistics snapshot.
func GenerateDashboard(results []*domain.ScoreResult, agentStats map[string]*domain.AgentStatistics) *Dashboard {
	var issues []DashboardIssue
	totalViolations := 0
	for _, r := range results {
		totalViolations += len(r.Violations)
		if !r.IsCritical() {
			continue
		}
		if r.PriceClaim && !r.StopTriggered {
			issues = append(issues, DashboardIssue{
				AgentID:   r.AgentID,
				Issue:     "Price mentioned without fact",
				Risk:      r.RiskLevel.String(),
				Timestamp: r.Timestamp,
			})
		}
		if r.LegalClaim && !r.StopTriggered {
			issues = append(issues, DashboardIssue{
				AgentID:   r.AgentID,
				Issue:     "No STOP on legal question",
				Risk:      r.RiskLevel.String(),
				Timestamp: r.Timestamp,
			})
		}
	}

	totalInteractions := 0
	stoppedCalls := 0
	riskSum := 0.0
	stopRateSum := 0.0
	var reviews []AgentReview

	agentIDs := make([]string, 0, len(agentStats))
	for id := range agentStats {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)

	for _, id := range agentIDs {
		s := agentStats[id]
		totalInteractions += s.TotalInteractions
		stoppedCalls += s.StopsTriggered
		riskSum += s.AverageRisk()
		stopRateSum += s.StopRate()

		if s.AverageRisk() > 1.0 || s.CriticalIncidents > 0 {
			recommendation := "Monitor closely"
			if s.CriticalIncidents > 1 {
				recommendation = "Review and retrain"
			}
			reviews = append(reviews, AgentReview{
				AgentID:           id,
				AverageRisk:       s.AverageRisk(),
				CriticalIncidents: s.CriticalIncidents,
				Recommendation:    recommendation,
			})
		}
	}

	agentCount := len(agentStats)
	if agentCount == 0 {
		agentCount = 1
	}

	allIssues := issues
	if len(issues) > maxDashboardIssues {
		issues = issues[:maxDashboardIssues]
	}

	return &Dashboard{
		Date:                     time.Now().Format(time.RFC3339),
		AgentsActive:             len(agentStats),
		TotalInteractions:        totalInteractions,
		StoppedCallsToday:        stoppedCalls,
		PotentialIssues:          issues,
		AgentsRequiringReview:    reviews,
		ActionRequired:           len(allIssues) > 0,
		Summary: DashboardSummary{
			AverageRisk:        math.Round(riskSum/float64(agentCount)*100) / 100,
			TotalViolations:    totalViolations,
			StopComplianceRate: fmt.Sprintf("%.1f%%", stopRateSum/float64(agentCount)*100),
		},
		SupervisorRecommendation: recommend(allIssues),
	}
}

// recommend derives the supervisor recommendation text from the flagged
// issues.
func recommend(issues []DashboardIssue) string {
	if len(issues) == 0 {
		return "All agents performing within acceptable parameters"
	}

	seen := make(map[string]struct{})
	var critical []string
	for _, issue := range issues {
		if issue.Risk != domain.LevelCritical.String() {
			continue
		}
		if _, ok := seen[issue.AgentID]; ok {
			continue
		}
		seen[issue.AgentID] = struct{}{}
		critical = append(critical, issue.AgentID)
	}

	if len(critical) > 0 {
		sort.Strings(critical)
		out := "Pause " + critical[0]
		for _, id := range critical[1:] {
			out += ", " + id
		}
		return out + " and rebrief immediately"
	}
	return "Review flagged interactions and provide feedback to agents"
}

// SaveDashboard writes the dashboard document as JSON.
func SaveDashboard(d *Dashboard, path string) error {
	data, err := json.MarshalIndent(dashboardDocument{SupervisorDashboard: d}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	slog.Info("dashboard written", "path", path)
	return nil
}

package report

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// SQLite export schema. One file per run; an existing file is extended.
const schemaScoreResults = `
CREATE TABLE IF NOT EXISTS score_results (
    id TEXT PRIMARY KEY,
    agent_id TEXT NOT NULL,
    contact TEXT,
    timestamp TEXT,
    price_claim INTEGER NOT NULL,
    price_keywords TEXT,
    legal_claim INTEGER NOT NULL,
    legal_keywords TEXT,
    stop_triggered INTEGER NOT NULL,
    placeholder_used INTEGER NOT NULL,
    risk INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    violations TEXT
);

CREATE INDEX IF NOT EXISTS idx_score_results_agent ON score_results(agent_id);
CREATE INDEX IF NOT EXISTS idx_score_results_level ON score_results(risk_level);
`

const schemaAgentStats = `
CREATE TABLE IF NOT EXISTS agent_stats (
    agent_id TEXT PRIMARY KEY,
    total_interactions INTEGER NOT NULL,
    total_risk_score INTEGER NOT NULL,
    price_claims INTEGER NOT NULL,
    legal_claims INTEGER NOT NULL,
    stops_triggered INTEGER NOT NULL,
    placeholders_used INTEGER NOT NULL,
    critical_incidents INTEGER NOT NULL,
    average_risk REAL NOT NULL,
    stop_rate REAL NOT NULL
);
`

// WriteSQLite exports scored results and agent statistics into a SQLite
// file. Uses modernc.org/sqlite, so no CGO is required.
func WriteSQLite(results []*domain.ScoreResult, agentStats map[string]*domain.AgentStatistics, path string) error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite export: %w", err)
	}
	defer db.Close()

	for _, schema := range []string{schemaScoreResults, schemaAgentStats} {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("create export schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin export transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertResults(tx, results); err != nil {
		return err
	}
	if err := insertAgentStats(tx, agentStats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export transaction: %w", err)
	}

	slog.Info("sqlite export written",
		"path", path,
		"results", len(results),
		"agents", len(agentStats),
	)
	return nil
}

func insertResults(tx *sql.Tx, results []*domain.ScoreResult) error {
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO score_results (
			id, agent_id, contact, timestamp,
			price_claim, price_keywords, legal_claim, legal_keywords,
			stop_triggered, placeholder_used, risk, risk_level, violations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(
			r.ID, r.AgentID, r.Contact, r.Timestamp,
			boolInt(r.PriceClaim), strings.Join(r.PriceKeywordsFound, ","),
			boolInt(r.LegalClaim), strings.Join(r.LegalKeywordsFound, ","),
			boolInt(r.StopTriggered), boolInt(r.PlaceholderUsed),
			r.Risk, r.RiskLevel.String(), strings.Join(r.Violations, "; "),
		)
		if err != nil {
			return fmt.Errorf("insert score result %s: %w", r.ID, err)
		}
	}
	return nil
}

func insertAgentStats(tx *sql.Tx, agentStats map[string]*domain.AgentStatistics) error {
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO agent_stats (
			agent_id, total_interactions, total_risk_score,
			price_claims, legal_claims, stops_triggered, placeholders_used,
			critical_incidents, average_risk, stop_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare stats insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range agentStats {
		_, err := stmt.Exec(
			s.AgentID, s.TotalInteractions, s.TotalRiskScore,
			s.PriceClaims, s.LegalClaims, s.StopsTriggered, s.PlaceholdersUsed,
			s.CriticalIncidents, s.AverageRisk(), s.StopRate(),
		)
		if err != nil {
			return fmt.Errorf("insert agent stats %s: %w", s.AgentID, err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

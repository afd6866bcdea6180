package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/opensource-agents/kestrel/internal/domain"
)

var csvHeader = []string{
	"agent_id", "contact", "timestamp", "price_claim", "legal_claim",
	"stop_triggered", "placeholder_used", "risk", "risk_level", "violations",
}

// WriteCSV exports scored results as CSV with a fixed column set.
// Violations are joined with "; " into a single cell.
func WriteCSV(results []*domain.ScoreResult, path string) error {
	if len(results) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.AgentID,
			r.Contact,
			r.Timestamp,
			strconv.FormatBool(r.PriceClaim),
			strconv.FormatBool(r.LegalClaim),
			strconv.FormatBool(r.StopTriggered),
			strconv.FormatBool(r.PlaceholderUsed),
			strconv.Itoa(r.Risk),
			r.RiskLevel.String(),
			strings.Join(r.Violations, "; "),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv report: %w", err)
	}

	slog.Info("csv report written", "path", path, "results", len(results))
	return nil
}

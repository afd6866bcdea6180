// Package report renders scored results and agent statistics into the
// export formats consumed by supervisors: JSON, CSV, HTML, a SQLite export
// file and the supervisor dashboard.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// WriteJSON exports scored results as a JSON array.
func WriteJSON(results []*domain.ScoreResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	slog.Info("json report written", "path", path, "results", len(results))
	return nil
}

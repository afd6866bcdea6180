package report

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/opensource-agents/kestrel/internal/batch"
	"github.com/opensource-agents/kestrel/internal/domain"
)

var levelColors = map[string]string{
	"LOW":      "#28a745",
	"MEDIUM":   "#ffc107",
	"HIGH":     "#fd7e14",
	"CRITICAL": "#dc3545",
}

type htmlRow struct {
	Result *domain.ScoreResult
	Color  string
}

type htmlData struct {
	Summary   *batch.Summary
	Rows      []htmlRow
	Generated string
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Kestrel Report</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 20px; background: #f5f5f5; }
        .container { max-width: 1400px; margin: 0 auto; }
        h1 { color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
        .summary { background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .summary-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr)); gap: 15px; }
        .stat-box { text-align: center; padding: 15px; background: #f8f9fa; border-radius: 8px; }
        .stat-value { font-size: 2em; font-weight: bold; color: #007bff; }
        .stat-label { color: #666; font-size: 0.9em; }
        table { width: 100%; border-collapse: collapse; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        th { background: #007bff; color: white; padding: 12px; text-align: left; }
        td { padding: 10px; border-bottom: 1px solid #eee; }
        tr:hover { background: #f8f9fa; }
        .timestamp { color: #666; font-size: 0.8em; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Kestrel Report</h1>

        <div class="summary">
            <h2>Zusammenfassung</h2>
            <div class="summary-grid">
                <div class="stat-box">
                    <div class="stat-value">{{.Summary.Total}}</div>
                    <div class="stat-label">Logs analysiert</div>
                </div>
                <div class="stat-box">
                    <div class="stat-value">{{.Summary.AverageRisk}}</div>
                    <div class="stat-label">Durchschn. Risiko</div>
                </div>
                <div class="stat-box">
                    <div class="stat-value">{{.Summary.AgentsAnalyzed}}</div>
                    <div class="stat-label">Agenten</div>
                </div>
                <div class="stat-box">
                    <div class="stat-value" style="color: #dc3545;">{{.Summary.CriticalCount}}</div>
                    <div class="stat-label">Kritische Vorfälle</div>
                </div>
            </div>
        </div>

        <h2>Detaillierte Ergebnisse</h2>
        <table>
            <thead>
                <tr>
                    <th>Agent ID</th>
                    <th>Kontakt</th>
                    <th>Zeitstempel</th>
                    <th>Preis-Claim</th>
                    <th>Rechts-Claim</th>
                    <th>STOP</th>
                    <th>Risk Score</th>
                    <th>Risk Level</th>
                    <th>Verstöße</th>
                </tr>
            </thead>
            <tbody>
                {{range .Rows}}
                <tr>
                    <td>{{.Result.AgentID}}</td>
                    <td>{{if .Result.Contact}}{{.Result.Contact}}{{else}}-{{end}}</td>
                    <td>{{if .Result.Timestamp}}{{.Result.Timestamp}}{{else}}-{{end}}</td>
                    <td>{{if .Result.PriceClaim}}Ja{{else}}Nein{{end}}</td>
                    <td>{{if .Result.LegalClaim}}Ja{{else}}Nein{{end}}</td>
                    <td>{{if .Result.StopTriggered}}Ja{{else}}Nein{{end}}</td>
                    <td>{{.Result.Risk}}</td>
                    <td style="background-color: {{.Color}}; color: white; font-weight: bold;">{{.Result.RiskLevel}}</td>
                    <td>{{if .Result.Violations}}{{range .Result.Violations}}{{.}}<br>{{end}}{{else}}-{{end}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>

        <p class="timestamp">Report erstellt: {{.Generated}}</p>
    </div>
</body>
</html>
`))

// WriteHTML renders scored results and their summary as an HTML report.
func WriteHTML(results []*domain.ScoreResult, summary *batch.Summary, path string) error {
	rows := make([]htmlRow, 0, len(results))
	for _, r := range results {
		color, ok := levelColors[r.RiskLevel.String()]
		if !ok {
			color = "#6c757d"
		}
		rows = append(rows, htmlRow{Result: r, Color: color})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	defer f.Close()

	data := htmlData{
		Summary:   summary,
		Rows:      rows,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := htmlReport.Execute(f, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	slog.Info("html report written", "path", path, "results", len(results))
	return nil
}

package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"sentrylog/internal/models"
)

// ThreatReport is the structured result of a threat scan, whether produced
// by the model or by the local fallback.
type ThreatReport struct {
	ThreatLevel   string   `json:"threatLevel"`
	Score         int      `json:"score"`
	ShortAnalysis string   `json:"shortAnalysis"`
	ActionItems   []string `json:"actionItems"`
}

// parseThreatReport validates model output against the report schema.
// Markdown code fences are stripped first; anything else that deviates
// from the schema is an error so the caller falls back.
func parseThreatReport(raw string) (ThreatReport, error) {
	cleaned := stripFences(raw)

	var report ThreatReport
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&report); err != nil {
		return ThreatReport{}, fmt.Errorf("decode threat report: %w", err)
	}

	switch report.ThreatLevel {
	case "LOW", "MEDIUM", "HIGH", "CRITICAL":
	default:
		return ThreatReport{}, fmt.Errorf("invalid threatLevel %q", report.ThreatLevel)
	}
	if report.Score < 0 || report.Score > 100 {
		return ThreatReport{}, fmt.Errorf("score %d out of range", report.Score)
	}
	if strings.TrimSpace(report.ShortAnalysis) == "" {
		return ThreatReport{}, fmt.Errorf("missing shortAnalysis")
	}
	if report.ActionItems == nil {
		return ThreatReport{}, fmt.Errorf("missing actionItems")
	}
	return report, nil
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// localThreatReport is the deterministic substitute used when the model is
// unavailable or returns unparseable output: CRITICAL/15 when any log is
// SOS, MEDIUM/65 when fewer than 3 logs exist, otherwise LOW/98.
func localThreatReport(logs []models.PatrolLog) ThreatReport {
	for _, l := range logs {
		if l.Status == models.StatusSOS {
			return ThreatReport{
				ThreatLevel:   "CRITICAL",
				Score:         15,
				ShortAnalysis: "Emergency signal detected. Immediate response required.",
				ActionItems: []string{
					"Contact on-duty supervisor.",
					"Alert local authorities.",
					"Check SOS location.",
				},
			}
		}
	}

	if len(logs) < 3 {
		return ThreatReport{
			ThreatLevel:   "MEDIUM",
			Score:         65,
			ShortAnalysis: "Patrol volume is significantly lower than average.",
			ActionItems: []string{
				"Verify guard schedule.",
				"Check device connectivity.",
			},
		}
	}

	return ThreatReport{
		ThreatLevel:   "LOW",
		Score:         98,
		ShortAnalysis: "All systems operational. Patrol frequency is optimal.",
		ActionItems:   []string{"Continue standard monitoring."},
	}
}

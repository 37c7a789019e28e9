package advisor

import (
	"fmt"
	"strings"
	"time"

	"sentrylog/internal/models"
)

func summaryPrompt(logs []models.PatrolLog, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("You are a security supervisor. Analyze these recent patrol logs:\n\n")
	for _, l := range logs {
		fmt.Fprintf(&b, "- Guard %s visited %s at %s\n",
			l.User.Name, l.Checkpoint.Name,
			l.CheckInTime.In(loc).Format("Jan 2, 2006 3:04 PM"))
	}
	b.WriteString("\nWrite a short, professional summary (max 3 sentences). ")
	b.WriteString("Mention if the patrols seem active or if there are any gaps.")
	return b.String()
}

func chatPrompt(logs []models.PatrolLog, question string, now time.Time, loc *time.Location) string {
	today := now.In(loc).Format("Jan 2")

	var b strings.Builder
	b.WriteString("You are Commander Aegis.\n")
	fmt.Fprintf(&b, "CURRENT DATE: %s\n\n", today)
	b.WriteString("Here is the raw log data:\n")
	for _, l := range logs {
		fmt.Fprintf(&b, "[%s] %s @ %s , status %s\n",
			l.CheckInTime.In(loc).Format("Jan 2, 03:04 PM"),
			l.User.Name, l.Checkpoint.Name, l.Status)
	}
	b.WriteString("\nOPERATIONAL RULES:\n")
	b.WriteString("1. Check-ins at :15 past the hour are LATE.\n")
	b.WriteString("2. Duplicate checks < 5 mins are SUSPICIOUS.\n\n")
	b.WriteString("RESPONSE GUIDELINES:\n")
	fmt.Fprintf(&b, "1. If the user asks about \"Today\", ONLY analyze logs marked with %q. IGNORE older logs.\n", today)
	fmt.Fprintf(&b, "2. If there are NO logs for %s, say \"Status: QUIET. No activity recorded today.\"\n", today)
	b.WriteString("3. Start with \"Status: OPTIMAL\" or \"Status: ATTENTION REQUIRED\".\n")
	b.WriteString("4. Group issues together. Do not list every timestamp.\n")
	b.WriteString("5. Do NOT use Markdown symbols (** or ##).\n\n")
	fmt.Fprintf(&b, "The Supervisor asks: %q\n", question)
	return b.String()
}

func threatPrompt(logs []models.PatrolLog, now time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the AI Security Core. Current Date: %s.\n", now.In(loc).Format("Jan 2"))
	b.WriteString("LOG DATA:\n")
	for _, l := range logs {
		fmt.Fprintf(&b, "[%s] %s @ %s (Status: %s)\n",
			l.CheckInTime.In(loc).Format("15:04:05"),
			l.User.Name, l.Checkpoint.Name, l.Status)
	}
	b.WriteString("\nTASK: Perform a full security audit based on the logs provided.\n\n")
	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("Return ONLY a raw JSON object (no markdown).\n")
	b.WriteString(`{
  "threatLevel": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL",
  "score": number (0-100, where 100 is safe),
  "shortAnalysis": "1-2 sentence summary.",
  "actionItems": ["Action 1", "Action 2"]
}`)
	return b.String()
}

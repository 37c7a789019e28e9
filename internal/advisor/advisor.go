// Package advisor renders patrol data into natural-language prompts for a
// hosted generative model and interprets the responses. Model failures are
// never surfaced to callers; every operation degrades to a locally
// computed response.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"sentrylog/internal/metrics"
	"sentrylog/internal/models"
)

// Generator produces text from a prompt. Implemented by Gemini; faked in
// tests.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is a Generator backed by the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini generator for the given model name.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("advisor: API key is required")
	}
	if model == "" {
		return nil, errors.New("advisor: model name is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("advisor: create client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}

// Advisor exposes the three advisory operations over a Generator. A nil
// Generator means every call answers with its fallback, which keeps the
// service fully functional without an API key.
type Advisor struct {
	gen Generator
	loc *time.Location
}

func New(gen Generator, loc *time.Location) *Advisor {
	if loc == nil {
		loc = time.UTC
	}
	return &Advisor{gen: gen, loc: loc}
}

// Summary produces a short patrol-activity summary over the supplied
// logs. The fallback reports only the raw log count.
func (a *Advisor) Summary(ctx context.Context, logs []models.PatrolLog) string {
	text, err := a.generate(ctx, summaryPrompt(logs, a.loc))
	if err != nil {
		a.fellBack("summary", err)
		return fmt.Sprintf(
			"AI service busy. System data shows %d recent patrols were completed successfully. Operations are normal.",
			len(logs),
		)
	}
	return text
}

// ChatFallback is returned when the Q&A call cannot reach the model.
const ChatFallback = "Secure link interrupted. I cannot process complex queries right now, but the live dashboard data above is accurate."

// Chat answers a free-form supervisor question against the supplied logs.
func (a *Advisor) Chat(ctx context.Context, logs []models.PatrolLog, question string) string {
	text, err := a.generate(ctx, chatPrompt(logs, question, time.Now(), a.loc))
	if err != nil {
		a.fellBack("chat", err)
		return ChatFallback
	}
	return text
}

// ThreatScan asks the model for a structured audit of the supplied logs.
// Any model failure or schema violation yields the deterministic local
// score instead.
func (a *Advisor) ThreatScan(ctx context.Context, logs []models.PatrolLog) ThreatReport {
	text, err := a.generate(ctx, threatPrompt(logs, time.Now(), a.loc))
	if err != nil {
		a.fellBack("threat", err)
		return localThreatReport(logs)
	}
	report, err := parseThreatReport(text)
	if err != nil {
		a.fellBack("threat", err)
		return localThreatReport(logs)
	}
	return report
}

func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	if a.gen == nil {
		return "", errors.New("no generator configured")
	}
	return a.gen.Generate(ctx, prompt)
}

func (a *Advisor) fellBack(op string, err error) {
	metrics.AdvisorFallbacks.WithLabelValues(op).Inc()
	log.Warn().Err(err).Str("op", op).Msg("advisory call fell back to local response")
}

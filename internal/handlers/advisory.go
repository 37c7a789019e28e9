package handlers

import (
	"errors"
	"net/http"
	"strings"

	"sentrylog/internal/models"
)

// Recent-log window per advisory operation, matching what each prompt is
// tuned for.
const (
	summaryWindow = 10
	chatWindow    = 20
	threatWindow  = 50
)

func (h *handler) recentForAdvisory(w http.ResponseWriter, r *http.Request, n int) ([]models.PatrolLog, bool) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	logs, err := h.store.RecentLogs(ctx, n)
	if err != nil {
		respondStoreError(w, err, "", "failed to fetch logs")
		return nil, false
	}
	return logs, true
}

// handleAnalysis returns a short natural-language patrol summary. Advisory
// failures are masked by the advisor's local fallback, never an error.
func (h *handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	logs, ok := h.recentForAdvisory(w, r, summaryWindow)
	if !ok {
		return
	}
	analysis := h.advisor.Summary(r.Context(), logs)
	respondJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respondError(w, http.StatusBadRequest, errors.New("question is required"))
		return
	}

	logs, ok := h.recentForAdvisory(w, r, chatWindow)
	if !ok {
		return
	}
	answer := h.advisor.Chat(r.Context(), logs, req.Question)
	respondJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func (h *handler) handleThreat(w http.ResponseWriter, r *http.Request) {
	logs, ok := h.recentForAdvisory(w, r, threatWindow)
	if !ok {
		return
	}
	report := h.advisor.ThreatScan(r.Context(), logs)
	respondJSON(w, http.StatusOK, report)
}

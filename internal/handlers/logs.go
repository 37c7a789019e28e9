package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sentrylog/internal/bus"
	"sentrylog/internal/metrics"
	"sentrylog/internal/models"
)

const maxRecentLimit = 100

// handleListLogs serves both log listing shapes: with ?limit= it returns
// the bare recent-N array used by report views, otherwise the paged
// envelope {logs, totalPages, currentPage} filtered by ?search= on the
// guard's name.
func (h *handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		if n > maxRecentLimit {
			n = maxRecentLimit
		}
		logs, err := h.store.RecentLogs(ctx, n)
		if err != nil {
			respondStoreError(w, err, "", "failed to fetch logs")
			return
		}
		respondJSON(w, http.StatusOK, logs)
		return
	}

	search := r.URL.Query().Get("search")
	// Non-numeric or out-of-range page input defaults to page 1.
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageResult, err := h.store.ListLogs(ctx, search, page)
	if err != nil {
		respondStoreError(w, err, "", "failed to fetch logs")
		return
	}
	respondJSON(w, http.StatusOK, pageResult)
}

// handleCreateLog records a guard check-in (or SOS). The caller must be
// authenticated; guards may only log as themselves.
func (h *handler) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authenticate(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	var req struct {
		UserID       uuid.UUID `json:"userId"`
		CheckpointID uuid.UUID `json:"checkpointId"`
		Status       string    `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == uuid.Nil || req.CheckpointID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("userId and checkpointId are required"))
		return
	}
	switch req.Status {
	case "", models.StatusVerified, models.StatusSOS:
	default:
		respondError(w, http.StatusBadRequest, errors.New("status must be VERIFIED or SOS"))
		return
	}
	if sess.Role != models.RoleSupervisor && sess.UserID != req.UserID {
		respondError(w, http.StatusForbidden, errors.New("guards may only log their own check-ins"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	entry, err := h.store.CreateLog(ctx, req.UserID, req.CheckpointID, req.Status)
	if err != nil {
		respondStoreError(w, err, "checkpoint not found", "failed to create log")
		return
	}

	metrics.CheckIns.WithLabelValues(entry.Status).Inc()
	h.publish(bus.SubjectLogCreated, entry)

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "log": entry})
}

// handleResolveLog flips a log's status to RESOLVED. Supervisor only. Any
// log id is accepted regardless of prior status.
func (h *handler) handleResolveLog(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSupervisor(w, r)
	if !ok {
		return
	}

	var req struct {
		LogID uuid.UUID `json:"logId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.LogID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("logId is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	entry, err := h.store.ResolveLog(ctx, req.LogID, &sess.UserID)
	if err != nil {
		respondStoreError(w, err, "log not found", "failed to resolve log")
		return
	}

	metrics.Resolutions.Inc()
	h.publish(bus.SubjectLogResolved, entry)

	respondJSON(w, http.StatusOK, entry)
}

func (h *handler) publish(subject string, v any) {
	if err := h.bus.Publish(subject, v); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}

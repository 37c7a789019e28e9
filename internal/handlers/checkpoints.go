package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

func (h *handler) handleListCheckpoints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	checkpoints, err := h.store.ListCheckpoints(ctx)
	if err != nil {
		respondStoreError(w, err, "", "failed to fetch checkpoints")
		return
	}
	respondJSON(w, http.StatusOK, checkpoints)
}

// handleUpdateCheckpoint overwrites a checkpoint's instruction and video
// URL. Supervisor only. Omitted fields are written as empty; there are no
// partial-update semantics.
func (h *handler) handleUpdateCheckpoint(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSupervisor(w, r)
	if !ok {
		return
	}

	var req struct {
		ID          uuid.UUID `json:"id"`
		Instruction string    `json:"instruction"`
		VideoURL    string    `json:"videoUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.ID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	checkpoint, err := h.store.UpdateCheckpoint(ctx, req.ID, req.Instruction, req.VideoURL, &sess.UserID)
	if err != nil {
		respondStoreError(w, err, "checkpoint not found", "failed to update checkpoint")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "checkpoint": checkpoint})
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sentrylog/internal/bus"
)

// handleEvents streams patrol log events as server-sent events, fed by
// the NATS bus. Polling GET /logs remains the primary live mechanism;
// this endpoint exists for consumers that want push delivery. Without a
// configured bus it reports unavailable.
func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("event stream unavailable"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	msgs, cancel, err := h.bus.Subscribe(bus.SubjectLogAll)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("event stream unavailable"))
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-msgs:
			if !open {
				return
			}
			name := strings.TrimPrefix(msg.Subject, "sentrylog.logs.")
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, msg.Data)
			flusher.Flush()
		}
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"sentrylog/internal/models"
	"sentrylog/internal/session"
)

// handleLogin performs the identity lookup: exact email match, no
// credential verification. On success a bearer token is issued so later
// mutations can be authorized server-side instead of trusting
// client-stored roles.
func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := h.store.UserByEmail(ctx, req.Email)
	if err != nil {
		respondStoreError(w, err, "user not found", "login failed")
		return
	}

	token := h.sessions.Issue(session.Session{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"role":  user.Role,
		"name":  user.Name,
		"token": token,
	})
}

// authenticate resolves the request's bearer token into a session.
func (h *handler) authenticate(r *http.Request) (session.Session, bool) {
	const prefix = "Bearer "
	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, prefix) {
		return session.Session{}, false
	}
	return h.sessions.Lookup(strings.TrimSpace(raw[len(prefix):]))
}

// requireSupervisor authenticates the request and enforces the SUPERVISOR
// role. Returns false after writing the error response.
func (h *handler) requireSupervisor(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := h.authenticate(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return session.Session{}, false
	}
	if sess.Role != models.RoleSupervisor {
		respondError(w, http.StatusForbidden, errors.New("supervisor role required"))
		return session.Session{}, false
	}
	return sess, true
}

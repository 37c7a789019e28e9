package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentrylog/internal/advisor"
	"sentrylog/internal/bus"
	"sentrylog/internal/session"
	"sentrylog/internal/store"
)

// Options carries the dependencies the HTTP layer needs.
type Options struct {
	Store          *store.Store
	Sessions       *session.Store
	Advisor        *advisor.Advisor
	Bus            *bus.Bus
	AllowedOrigins []string
}

type handler struct {
	store    *store.Store
	sessions *session.Store
	advisor  *advisor.Advisor
	bus      *bus.Bus
}

// Router builds the HTTP router for the patrol tracker API.
func Router(opts Options) http.Handler {
	h := &handler{
		store:    opts.Store,
		sessions: opts.Sessions,
		advisor:  opts.Advisor,
		bus:      opts.Bus,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/login", h.handleLogin)

		r.Get("/checkpoints", h.handleListCheckpoints)
		r.Put("/checkpoints", h.handleUpdateCheckpoint)

		r.Get("/logs", h.handleListLogs)
		r.Post("/logs", h.handleCreateLog)
		r.Put("/logs", h.handleResolveLog)

		r.Post("/ai_analysis", h.handleAnalysis)
		r.Post("/ai_chat", h.handleChat)
		r.Post("/ai_threat", h.handleThreat)
	})

	// Outside the timeout group: event streams stay open until the client
	// disconnects.
	r.Get("/events", h.handleEvents)

	return r
}

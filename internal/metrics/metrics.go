package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckIns counts patrol log creations by status.
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentrylog_checkins_total",
		Help: "Patrol log creations by status.",
	}, []string{"status"})

	// Resolutions counts supervisor log resolutions.
	Resolutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentrylog_resolutions_total",
		Help: "Supervisor log resolutions.",
	})

	// AdvisorFallbacks counts advisory calls that fell back to a locally
	// computed response.
	AdvisorFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentrylog_advisor_fallbacks_total",
		Help: "Advisory calls answered by the local fallback, by operation.",
	}, []string{"op"})
)

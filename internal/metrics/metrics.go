// Package metrics provides Prometheus metrics for the extraction service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionsTotal counts extractions by path and organizer status.
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acordex",
			Subsystem: "extraction",
			Name:      "requests_total",
			Help:      "Total number of extractions by method and organizer status",
		},
		[]string{"method", "organizer_status"},
	)

	// ExtractionDuration tracks end-to-end extraction time.
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "acordex",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Duration of extractions in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method"},
	)

	// OrganizerFailures counts organizer calls that degraded an extraction.
	OrganizerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acordex",
			Subsystem: "organizer",
			Name:      "failures_total",
			Help:      "Total number of organizer calls that failed",
		},
		[]string{"provider"},
	)

	// OrganizerTokens counts tokens spent on organizer calls.
	OrganizerTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acordex",
			Subsystem: "organizer",
			Name:      "tokens_total",
			Help:      "Total number of LLM tokens used by the organizer",
		},
		[]string{"kind"},
	)

	// MatchOutcomes counts rule matching results.
	MatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acordex",
			Subsystem: "rules",
			Name:      "match_outcomes_total",
			Help:      "Total number of rule matches by outcome",
		},
		[]string{"outcome"},
	)

	// HTTPRequestsTotal counts inbound API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acordex",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)
)

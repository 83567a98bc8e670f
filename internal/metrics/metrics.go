// Package metrics holds the Prometheus collectors for the detection and
// bargain pipelines. Collectors register with the default registry and are
// served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classifier request outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeParseError     = "parse_error"
	OutcomeSchemaError    = "schema_error"
	OutcomeEmpty          = "empty"
)

var (
	ClassifierRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscriptcheck_classifier_requests_total",
		Help: "Reasoning service calls by request kind and outcome.",
	}, []string{"kind", "outcome"})

	DetectionCandidates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscriptcheck_detection_candidates_total",
		Help: "Merchant groups sent to classification.",
	})

	SubscriptionsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscriptcheck_subscriptions_saved_total",
		Help: "Subscriptions written by detection.",
	})

	BenchmarksInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscriptcheck_benchmarks_inserted_total",
		Help: "Market benchmarks inserted, by origin (research or seed).",
	}, []string{"origin"})

	BargainHunts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscriptcheck_bargain_hunts_total",
		Help: "Bargain hunts by result source.",
	}, []string{"source"})
)

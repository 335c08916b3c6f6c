// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesReceived counts updates submitted to the dispatcher by tag
	UpdatesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yugram_updates_received_total",
			Help: "Total number of updates submitted to the dispatcher",
		},
		[]string{"tag"},
	)

	// UpdatesDropped counts updates with no registered consumer
	UpdatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yugram_updates_dropped_total",
			Help: "Total number of updates dropped because no consumer handles their tag",
		},
		[]string{"tag"},
	)

	// UpdateErrors counts consumer failures by tag
	UpdateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yugram_update_errors_total",
			Help: "Total number of updates whose consumer returned an error",
		},
		[]string{"tag"},
	)

	// PendingUpdates tracks updates buffered before readiness
	PendingUpdates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yugram_pending_updates",
			Help: "Number of updates buffered before the dispatcher became ready",
		},
	)

	// DecodeErrors counts TDLib objects that could not be decoded
	DecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yugram_tdlib_decode_errors_total",
			Help: "Total number of TDLib objects skipped because they could not be decoded",
		},
	)

	// AuthorizationState is 1 for the current authorization state and 0 otherwise
	AuthorizationState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yugram_authorization_state",
			Help: "Current authorization state (1 for the active state)",
		},
		[]string{"state"},
	)

	// AuthRequests counts handshake requests by type and outcome
	AuthRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yugram_auth_requests_total",
			Help: "Total number of authorization requests by type and result",
		},
		[]string{"request", "result"},
	)

	// Reconciled counts reconcile outcomes per entity
	Reconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yugram_reconciled_total",
			Help: "Total number of reconcile operations by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	// StoreRows tracks row counts per entity table
	StoreRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yugram_store_rows",
			Help: "Number of stored rows by table",
		},
		[]string{"table"},
	)
)

// Reconcile outcomes.
const (
	OutcomeCreated = "created"
	OutcomeMerged  = "merged"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

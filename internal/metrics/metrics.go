// Package metrics provides Prometheus instrumentation for the recent
// sessions store. It exposes counters for upserts, prunes and corrupt
// reads, gauges describing the stored list, and helpers to render the
// registry as text or push it to a Pushgateway.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

var (
	// OperationsTotal counts store operations, labeled by op:
	// "load", "persist", "upsert", "list", "remove".
	OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recent_sessions_operations_total",
		Help: "Total number of session store operations",
	}, []string{"op"})

	// StorageErrorsTotal counts errors returned by the storage engine.
	StorageErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recent_sessions_storage_errors_total",
		Help: "Total number of storage engine errors",
	}, []string{"op"})

	// CorruptLoadsTotal counts stored values that failed to decode and were
	// replaced by an empty list.
	CorruptLoadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recent_sessions_corrupt_loads_total",
		Help: "Stored values that failed to decode",
	})

	// PrunedTotal counts expired records dropped by upserts.
	PrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recent_sessions_pruned_total",
		Help: "Expired session records removed on upsert",
	})

	// ListSize tracks the length of the stored list, as last persisted or
	// observed.
	ListSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recent_sessions_list_size",
		Help: "Number of stored session records",
	})

	// RecentSessions tracks stored records still within the TTL.
	RecentSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recent_sessions_recent",
		Help: "Stored session records accessed within the TTL",
	})

	// StaleSessions tracks stored records past the TTL that the next
	// upsert will drop.
	StaleSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recent_sessions_stale",
		Help: "Stored session records past the TTL awaiting pruning",
	})
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		OperationsTotal,
		StorageErrorsTotal,
		CorruptLoadsTotal,
		PrunedTotal,
		ListSize,
		RecentSessions,
		StaleSessions,
	)
}

// ObserveList sets the list gauges from a read of the stored list.
func ObserveList(stored, recent int) {
	ListSize.Set(float64(stored))
	RecentSessions.Set(float64(recent))
	StaleSessions.Set(float64(stored - recent))
}

// Push sends every registered metric to the Pushgateway at url under the
// given job name. Each CLI run is short-lived, so its counters only leave
// the process this way.
func Push(url, job string) error {
	if err := push.New(url, job).Gatherer(registry).Push(); err != nil {
		return fmt.Errorf("metrics: push: %w", err)
	}
	return nil
}

// WriteText renders every registered metric in the Prometheus text format.
func WriteText(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write: %w", err)
		}
	}
	return nil
}

// Package metrics exposes Prometheus instruments for engine dispatches,
// validation results and history depth.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "wirescope_"

// Dispatch result labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
)

var (
	registerOnce sync.Once

	dispatchTotal   *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec

	validationIssues *prometheus.GaugeVec

	historyDepth *prometheus.GaugeVec
	stateVersion prometheus.Gauge
)

// Init registers the instruments with reg, or with the default registerer
// when reg is nil. Only the first call has an effect.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		dispatchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dispatch_total",
				Help: "Total engine dispatches by action and result",
			},
			[]string{"action", "result"},
		)
		dispatchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dispatch_latency_seconds",
				Help:    "Engine dispatch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		)
		validationIssues = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "validation_issues",
				Help: "Validation issues of the current state by severity",
			},
			[]string{"severity"},
		)
		historyDepth = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "history_depth",
				Help: "Undo and redo stack depth",
			},
			[]string{"stack"},
		)
		stateVersion = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "state_version",
				Help: "Monotonic version of the engine state",
			},
		)

		reg.MustRegister(
			dispatchTotal,
			dispatchLatency,
			validationIssues,
			historyDepth,
			stateVersion,
		)
	})
}

// ObserveDispatch records one dispatch outcome and its duration.
func ObserveDispatch(action, result string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if dispatchTotal != nil {
		dispatchTotal.WithLabelValues(action, result).Inc()
	}
	if dispatchLatency != nil {
		dispatchLatency.WithLabelValues(action).Observe(duration.Seconds())
	}
}

// SetValidationIssues publishes the current issue counts.
func SetValidationIssues(errors, warnings int) {
	if validationIssues != nil {
		validationIssues.WithLabelValues("error").Set(float64(errors))
		validationIssues.WithLabelValues("warning").Set(float64(warnings))
	}
}

// SetHistoryDepth publishes the undo and redo stack sizes.
func SetHistoryDepth(undo, redo int) {
	if historyDepth != nil {
		historyDepth.WithLabelValues("undo").Set(float64(undo))
		historyDepth.WithLabelValues("redo").Set(float64(redo))
	}
}

func SetStateVersion(version uint64) {
	if stateVersion != nil {
		stateVersion.Set(float64(version))
	}
}

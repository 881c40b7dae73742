// Package metrics holds the prometheus collectors of the allocation
// service. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics contains all prometheus metrics of the allocation service.
type Metrics struct {
	// Pass outcomes
	Passes       *prometheus.CounterVec
	PassFailures *prometheus.CounterVec
	Conflicts    prometheus.Counter
	PassDuration prometheus.Histogram

	// Last committed allocation per campaign
	NodesAllocated *prometheus.GaugeVec
	MediaBudget    *prometheus.GaugeVec

	PublishFailures prometheus.Counter

	// Scheduler
	Sweeps        prometheus.Counter
	SweepDuration prometheus.Histogram
}

// NewMetrics creates and registers all allocation metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocation_passes_total",
				Help: "Allocation passes by outcome status",
			},
			[]string{"status"},
		),
		PassFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocation_pass_failures_total",
				Help: "Failed allocation passes by error kind",
			},
			[]string{"kind"},
		),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_persist_conflicts_total",
			Help: "Optimistic concurrency conflicts on the allocation record",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "allocation_pass_duration_seconds",
			Help:    "Wall time of allocation passes including retries",
			Buckets: prometheus.DefBuckets,
		}),
		NodesAllocated: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "allocation_nodes_allocated",
				Help: "Nodes in the last committed allocation",
			},
			[]string{"campaign_id"},
		),
		MediaBudget: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "allocation_media_budget",
				Help: "Media budget of the last committed allocation",
			},
			[]string{"campaign_id"},
		),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_publish_failures_total",
			Help: "Committed allocations that could not be published",
		}),
		Sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_scheduler_sweeps_total",
			Help: "Scheduler sweeps over active campaigns",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "allocation_scheduler_sweep_duration_seconds",
			Help:    "Wall time of scheduler sweeps",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.Passes,
		m.PassFailures,
		m.Conflicts,
		m.PassDuration,
		m.NodesAllocated,
		m.MediaBudget,
		m.PublishFailures,
		m.Sweeps,
		m.SweepDuration,
	)

	return m
}

// PassFinished records the outcome of a pass.
func (m *Metrics) PassFinished(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.Passes.WithLabelValues(status).Inc()
	m.PassDuration.Observe(took.Seconds())
}

// PassFailed records a failed pass by error kind.
func (m *Metrics) PassFailed(kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.PassFailures.WithLabelValues(kind).Inc()
	m.PassDuration.Observe(took.Seconds())
}

// Conflict records a version conflict.
func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.Conflicts.Inc()
}

// Committed records the size of a committed allocation.
func (m *Metrics) Committed(campaignID int64, nodes int, media decimal.Decimal) {
	if m == nil {
		return
	}
	id := strconv.FormatInt(campaignID, 10)
	m.NodesAllocated.WithLabelValues(id).Set(float64(nodes))
	m.MediaBudget.WithLabelValues(id).Set(media.InexactFloat64())
}

// PublishFailed records a publish error.
func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}

// Sweep records a finished scheduler sweep.
func (m *Metrics) Sweep(took time.Duration) {
	if m == nil {
		return
	}
	m.Sweeps.Inc()
	m.SweepDuration.Observe(took.Seconds())
}

// Package metrics declares the Prometheus surface of the board engine,
// grounded on the teacher's monitoring/metrics.go. HTTP/LLM/tool/DB
// metrics are dropped along with the product surfaces that produced
// them; run, node, reanimation, and event-bus metrics are kept and
// renamed into a boardgraph_ namespace, plus new scheduler gauges the
// teacher had no equivalent for.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/duragraph/boardgraph/internal/harness"
	"github.com/duragraph/boardgraph/internal/probe"
)

// Metrics holds every Prometheus collector the engine registers.
type Metrics struct {
	RunsTotal            *prometheus.CounterVec
	RunDuration          *prometheus.HistogramVec
	RunsActive           prometheus.Gauge
	RunStatusTransitions *prometheus.CounterVec

	NodesExecutedTotal *prometheus.CounterVec
	NodeDuration       *prometheus.HistogramVec
	NodeErrors         *prometheus.CounterVec
	NodeSkipped        *prometheus.CounterVec

	SchedulerQueueDepth prometheus.Gauge
	SchedulerReady      prometheus.Gauge

	ReanimationsTotal  *prometheus.CounterVec
	ReanimationPending prometheus.Gauge

	EventsPublishedTotal *prometheus.CounterVec
}

// New creates and registers all collectors under namespace. An empty
// namespace defaults to "boardgraph".
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "boardgraph"
	}

	return &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "runs_total", Help: "Total number of runs started"},
			[]string{"thread_id"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "run_duration_seconds", Help: "Run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"status"},
		),
		RunsActive: promauto.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "runs_active", Help: "Number of runs not yet in a terminal status"},
		),
		RunStatusTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "run_status_transitions_total", Help: "Total run status transitions"},
			[]string{"from_status", "to_status"},
		),

		NodesExecutedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "nodes_executed_total", Help: "Total node invocations"},
			[]string{"node_type"},
		),
		NodeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "node_duration_seconds", Help: "Node invocation duration in seconds", Buckets: prometheus.DefBuckets},
			[]string{"node_type"},
		),
		NodeErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "node_errors_total", Help: "Total node invocation errors"},
			[]string{"node_type"},
		),
		NodeSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "node_skipped_total", Help: "Total nodes dequeued but skipped for missing inputs"},
			[]string{"node_type"},
		),

		SchedulerQueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "scheduler_queue_depth", Help: "Number of nodes currently enqueued across active runs"},
		),
		SchedulerReady: promauto.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "scheduler_ready", Help: "Number of nodes currently ready to run across active runs"},
		),

		ReanimationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "reanimations_total", Help: "Total pause/resume cycles"},
			[]string{"direction"},
		),
		ReanimationPending: promauto.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "reanimation_pending", Help: "Number of reanimation tickets currently outstanding"},
		),

		EventsPublishedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Total harness events published to the transport"},
			[]string{"kind"},
		),
	}
}

// Sink adapts Metrics to probe.Sink so the traversal machine's probe
// feed drives node/scheduler observability without a direct dependency
// from internal/traversal on prometheus.
type Sink struct {
	m         *Metrics
	startedAt map[string]time.Time
}

func NewSink(m *Metrics) *Sink {
	return &Sink{m: m, startedAt: make(map[string]time.Time)}
}

func (s *Sink) Observe(msg probe.Message) {
	switch msg.Kind {
	case probe.KindHarness:
		e, ok := msg.Payload.(harness.Event)
		if !ok {
			return
		}
		s.m.EventsPublishedTotal.WithLabelValues(string(e.Kind)).Inc()
		switch e.Kind {
		case harness.KindNodeStart:
			s.startedAt[e.NodeID] = time.Now()
		case harness.KindNodeEnd:
			s.m.NodesExecutedTotal.WithLabelValues(e.NodeType).Inc()
			if started, ok := s.startedAt[e.NodeID]; ok {
				s.m.NodeDuration.WithLabelValues(e.NodeType).Observe(time.Since(started).Seconds())
				delete(s.startedAt, e.NodeID)
			}
		case harness.KindError:
			s.m.NodeErrors.WithLabelValues(e.NodeType).Inc()
		case harness.KindSkip:
			s.m.NodeSkipped.WithLabelValues(e.NodeType).Inc()
		}
	case probe.KindReady:
		s.m.SchedulerReady.Inc()
	}
}

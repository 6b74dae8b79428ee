// Package metrics exports playback and load statistics to Prometheus.
//
// A Recorder is both a render.Renderer (fed every published snapshot) and
// a session.Observer (fed every load and state transition), so it sees
// exactly what the other renderers see.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/scheduler"
	"github.com/vk/supertrace/internal/session"
)

const namespace = "supertrace"

// Recorder holds the collectors of one process.
type Recorder struct {
	loads           prometheus.Counter
	parseWarnings   prometheus.Counter
	emptyTraces     prometheus.Counter
	traceNodes      prometheus.Gauge
	traceEdges      prometheus.Gauge
	maxSuperstep    prometheus.Gauge
	currentStep     prometheus.Gauge
	visibleEdges    prometheus.Gauge
	snapshots       *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	runsCompleted   prometheus.Counter
	messagesPerStep prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		loads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "loads_total",
			Help:      "Total traces loaded",
		}),
		parseWarnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "parse_warnings_total",
			Help:      "Total malformed lines skipped while parsing traces",
		}),
		emptyTraces: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "empty_total",
			Help:      "Total traces loaded without any message",
		}),
		traceNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "nodes",
			Help:      "Nodes in the current trace",
		}),
		traceEdges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "edges",
			Help:      "Edges in the current trace",
		}),
		maxSuperstep: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "max_superstep",
			Help:      "Highest superstep of the current trace, -1 if empty",
		}),
		currentStep: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "step",
			Help:      "Last applied superstep, -1 if none",
		}),
		visibleEdges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "visible_edges",
			Help:      "Edges currently revealed",
		}),
		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "snapshots_total",
			Help:      "Snapshots published, by reason",
		}, []string{"reason"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "transitions_total",
			Help:      "Scheduler state transitions",
		}, []string{"from", "to"}),
		runsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "runs_completed_total",
			Help:      "Runs that reached the last superstep",
		}),
		messagesPerStep: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trace",
			Name:      "messages_per_superstep",
			Help:      "Average messages per superstep of loaded traces",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
}

// OnSnapshot implements render.Renderer.
func (r *Recorder) OnSnapshot(_ context.Context, s render.Snapshot) {
	r.snapshots.WithLabelValues(string(s.Reason)).Inc()
	r.currentStep.Set(float64(s.Step))
	r.visibleEdges.Set(float64(s.VisibleEdges()))
}

// ObserveLoad implements session.Observer.
func (r *Recorder) ObserveLoad(_ context.Context, report *session.LoadReport) {
	r.loads.Inc()
	r.parseWarnings.Add(float64(len(report.Warnings)))
	r.traceNodes.Set(float64(report.Nodes))
	r.traceEdges.Set(float64(report.Edges))
	r.maxSuperstep.Set(float64(report.MaxSuperstep))
	if report.Empty {
		r.emptyTraces.Inc()
		return
	}
	r.messagesPerStep.Observe(float64(report.Edges) / float64(report.MaxSuperstep+1))
}

// ObserveTransition implements session.Observer.
func (r *Recorder) ObserveTransition(from, to scheduler.State) {
	r.transitions.WithLabelValues(from.String(), to.String()).Inc()
	if to == scheduler.Done && from == scheduler.Running {
		r.runsCompleted.Inc()
	}
}

var (
	_ render.Renderer  = (*Recorder)(nil)
	_ session.Observer = (*Recorder)(nil)
)

// Package promhooks exports graph and engine events as Prometheus metrics.
package promhooks

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/modelgraph/pkg/observability"
)

// Hooks implements [observability.GraphHooks] and [observability.EngineHooks]
// on top of Prometheus collectors.
type Hooks struct {
	models          *prometheus.CounterVec
	transformations *prometheus.CounterVec
	searches        *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	pathHops        prometheus.Histogram
	files           *prometheus.CounterVec
	fileDuration    prometheus.Histogram
	fileDescs       prometheus.Counter
}

// New creates the collectors and registers them with reg.
// It panics if a collector is already registered, like MustRegister.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		models: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgraph_model_events_total",
				Help: "Number of model registrations and removals.",
			},
			[]string{"event"},
		),
		transformations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgraph_transformation_events_total",
				Help: "Number of transformations added to and removed from the graph.",
			},
			[]string{"event"},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgraph_path_searches_total",
				Help: "Number of transformation path searches by result.",
			},
			[]string{"result"},
		),
		searchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "modelgraph_path_search_duration_seconds",
				Help:    "Time taken to search for a transformation path.",
				Buckets: prometheus.DefBuckets,
			},
		),
		pathHops: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "modelgraph_path_hops",
				Help:    "Number of transformations in the paths found.",
				Buckets: []float64{1, 2, 3, 4, 5, 8, 13},
			},
		),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgraph_files_loaded_total",
				Help: "Number of transformation files loaded by result.",
			},
			[]string{"result"},
		),
		fileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "modelgraph_file_load_duration_seconds",
				Help:    "Time taken to load a transformation file.",
				Buckets: prometheus.DefBuckets,
			},
		),
		fileDescs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "modelgraph_file_transformations_total",
				Help: "Number of transformation descriptions read from files.",
			},
		),
	}
	reg.MustRegister(
		h.models,
		h.transformations,
		h.searches,
		h.searchDuration,
		h.pathHops,
		h.files,
		h.fileDuration,
		h.fileDescs,
	)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnModelAdded(context.Context, string) {
	h.models.WithLabelValues("added").Inc()
}

func (h *Hooks) OnModelRemoved(context.Context, string) {
	h.models.WithLabelValues("removed").Inc()
}

func (h *Hooks) OnTransformationAdded(context.Context, string, string, string) {
	h.transformations.WithLabelValues("added").Inc()
}

func (h *Hooks) OnTransformationRemoved(context.Context, string, string, string) {
	h.transformations.WithLabelValues("removed").Inc()
}

func (h *Hooks) OnPathSearch(_ context.Context, _, _ string, hops int, d time.Duration, err error) {
	h.searches.WithLabelValues(result(err)).Inc()
	h.searchDuration.Observe(d.Seconds())
	if err == nil {
		h.pathHops.Observe(float64(hops))
	}
}

func (h *Hooks) OnFileLoaded(_ context.Context, _ string, count int, d time.Duration, err error) {
	h.files.WithLabelValues(result(err)).Inc()
	h.fileDuration.Observe(d.Seconds())
	if err == nil {
		h.fileDescs.Add(float64(count))
	}
}

var (
	_ observability.GraphHooks  = (*Hooks)(nil)
	_ observability.EngineHooks = (*Hooks)(nil)
)

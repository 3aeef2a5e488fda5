package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionMetrics tracks the session core: dispatch volume, renderer
// lifecycle, artifact generation, and reconciliation polling. All methods
// are nil-receiver safe so components can run unmetered in tests.
type SessionMetrics struct {
	registry *prometheus.Registry

	dispatchTotal   *prometheus.CounterVec
	navigationTotal prometheus.Counter
	highlightTotal  prometheus.Counter
	rendererLive    prometheus.Gauge
	generationTotal *prometheus.CounterVec
	generationTime  *prometheus.HistogramVec
	pollCycles      prometheus.Counter
	pendingDocs     prometheus.Gauge
}

func NewSessionMetrics(service string) *SessionMetrics {
	registry := prometheus.NewRegistry()

	dispatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "insight",
			Subsystem:   "session",
			Name:        "dispatch_total",
			Help:        "Total store dispatches by action.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"action"},
	)
	navigationTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "insight",
		Subsystem:   "viewer",
		Name:        "navigation_total",
		Help:        "Renderer navigations applied.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	highlightTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "insight",
		Subsystem:   "viewer",
		Name:        "highlight_total",
		Help:        "Search highlight calls issued.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	rendererLive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "insight",
		Subsystem:   "viewer",
		Name:        "renderer_live",
		Help:        "Whether a renderer instance is live (0 or 1).",
		ConstLabels: prometheus.Labels{"service": service},
	})
	generationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "insight",
			Subsystem:   "artifacts",
			Name:        "generation_total",
			Help:        "Artifact generations by kind and status.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"kind", "status"},
	)
	generationTime := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "insight",
			Subsystem:   "artifacts",
			Name:        "generation_duration_seconds",
			Help:        "Artifact generation latency by kind.",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)
	pollCycles := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "insight",
		Subsystem:   "reconcile",
		Name:        "poll_cycles_total",
		Help:        "Remote status poll cycles executed.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	pendingDocs := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "insight",
		Subsystem:   "reconcile",
		Name:        "pending_documents",
		Help:        "Documents still pending remote processing.",
		ConstLabels: prometheus.Labels{"service": service},
	})

	registry.MustRegister(dispatchTotal, navigationTotal, highlightTotal,
		rendererLive, generationTotal, generationTime, pollCycles, pendingDocs)

	return &SessionMetrics{
		registry:        registry,
		dispatchTotal:   dispatchTotal,
		navigationTotal: navigationTotal,
		highlightTotal:  highlightTotal,
		rendererLive:    rendererLive,
		generationTotal: generationTotal,
		generationTime:  generationTime,
		pollCycles:      pollCycles,
		pendingDocs:     pendingDocs,
	}
}

func (m *SessionMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SessionMetrics) Dispatched(action string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(action).Inc()
}

func (m *SessionMetrics) NavigationApplied() {
	if m == nil {
		return
	}
	m.navigationTotal.Inc()
}

func (m *SessionMetrics) HighlightIssued() {
	if m == nil {
		return
	}
	m.highlightTotal.Inc()
}

func (m *SessionMetrics) RendererStarted() {
	if m == nil {
		return
	}
	m.rendererLive.Set(1)
}

func (m *SessionMetrics) RendererStopped() {
	if m == nil {
		return
	}
	m.rendererLive.Set(0)
}

func (m *SessionMetrics) GenerationFinished(kind string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.generationTotal.WithLabelValues(kind, status).Inc()
	m.generationTime.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *SessionMetrics) PollCycle() {
	if m == nil {
		return
	}
	m.pollCycles.Inc()
}

func (m *SessionMetrics) PendingDocuments(n int) {
	if m == nil {
		return
	}
	m.pendingDocs.Set(float64(n))
}

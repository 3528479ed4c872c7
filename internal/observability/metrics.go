package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for one server. Each collector has
// its own registry, so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	LayoutSteps    prometheus.Counter
	FramesRendered prometheus.Counter
	ActiveSessions prometheus.Gauge
	PositionSaves  prometheus.Counter
	Navigations    *prometheus.CounterVec
	ConfigErrors   prometheus.Counter
	VisitorFetches *prometheus.CounterVec
}

// NewCollector creates and registers every metric under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LayoutSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_steps_total",
			Help:      "Layout simulation steps integrated across all sessions",
		}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Scenes rendered and sent to clients",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Live graph sessions",
		}),
		PositionSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "position_saves_total",
			Help:      "Node positions persisted after a drag",
		}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Node clicks that navigated to a section",
		}, []string{"node"}),
		ConfigErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_errors_total",
			Help:      "Graph definition problems found while loading",
		}),
		VisitorFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visitor_fetch_total",
			Help:      "Visitor counter lookups by outcome",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.LayoutSteps,
		c.FramesRendered,
		c.ActiveSessions,
		c.PositionSaves,
		c.Navigations,
		c.ConfigErrors,
		c.VisitorFetches,
	)
	return c
}

func (c *Collector) RecordLayoutStep()   { c.LayoutSteps.Inc() }
func (c *Collector) RecordFrame()        { c.FramesRendered.Inc() }
func (c *Collector) RecordPositionSave() { c.PositionSaves.Inc() }

func (c *Collector) RecordNavigation(nodeID string) {
	c.Navigations.WithLabelValues(nodeID).Inc()
}

// RecordConfigErrors counts problems reported by a definition load.
func (c *Collector) RecordConfigErrors(n int) {
	c.ConfigErrors.Add(float64(n))
}

func (c *Collector) RecordVisitorFetch(result string) {
	c.VisitorFetches.WithLabelValues(result).Inc()
}

func (c *Collector) SessionStarted() { c.ActiveSessions.Inc() }
func (c *Collector) SessionEnded()   { c.ActiveSessions.Dec() }

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

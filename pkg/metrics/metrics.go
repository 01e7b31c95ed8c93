// Package metrics exposes Prometheus collectors for the navigation engine.
//
// All recording methods are safe to call on a nil *Metrics, so components
// can take an optional collector without nil checks at every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "vnav").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for component load duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vnav",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Resolution outcomes.
const (
	OutcomeResolved   = "resolved"
	OutcomeNotFound   = "not_found"
	OutcomeRedirected = "redirected"
	OutcomeDuplicate  = "duplicate"
	OutcomeError      = "error"
)

// Metrics holds the navigation collectors.
type Metrics struct {
	navigations    *prometheus.CounterVec
	redirects      *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	activeSessions prometheus.Gauge
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigation broadcasts by origin",
			ConstLabels: config.ConstLabels,
		}, []string{"origin"}),

		redirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of guard redirects by guard",
			ConstLabels: config.ConstLabels,
		}, []string{"guard"}),

		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "Total number of route resolutions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_loads_total",
			Help:        "Total number of lazy component imports by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_load_duration_seconds",
			Help:        "Lazy component import duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected browser sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordNavigation counts a broadcast.
func (m *Metrics) RecordNavigation(origin string) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(origin).Inc()
}

// RecordRedirect counts a guard redirect.
func (m *Metrics) RecordRedirect(guard string) {
	if m == nil {
		return
	}
	m.redirects.WithLabelValues(guard).Inc()
}

// RecordResolution counts a resolution outcome.
func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// RecordLoad records a finished component import.
func (m *Metrics) RecordLoad(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.loads.WithLabelValues(status).Inc()
	m.loadDuration.Observe(d.Seconds())
}

// RecordSessionOpen records a new browser session.
func (m *Metrics) RecordSessionOpen() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// RecordSessionClose records a closed browser session.
func (m *Metrics) RecordSessionClose() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

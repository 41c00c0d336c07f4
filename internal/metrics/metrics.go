// Package metrics exposes Prometheus counters for the Wayland wire engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "hyacinth").
	Namespace string

	// Registry receives the metrics and backs the /metrics endpoint.
	// Default: a fresh prometheus.Registry.
	Registry *prometheus.Registry
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Collector counts wire traffic. All methods are safe on a nil *Collector,
// so metrics stay optional for every caller.
type Collector struct {
	registry       *prometheus.Registry
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec
	pings          prometheus.Counter
	roundtrips     prometheus.Counter
	configures     prometheus.Counter
}

// New creates a collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := Config{Namespace: "hyacinth"}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		registry: config.Registry,

		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "requests_sent_total",
			Help:      "Requests written to the compositor socket",
		}, []string{"interface", "message"}),

		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_received_total",
			Help:      "Events decoded from the compositor socket",
		}, []string{"interface", "message"}),

		framesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_dropped_total",
			Help:      "Events dropped before reaching a listener",
		}, []string{"reason"}),

		pings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "pings_answered_total",
			Help:      "xdg_wm_base pings answered with a pong",
		}),

		roundtrips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "roundtrips_total",
			Help:      "Completed wl_display.sync round trips",
		}),

		configures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "configures_acked_total",
			Help:      "xdg_surface configure serials acknowledged",
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) RequestSent(iface, message string) {
	if c == nil {
		return
	}
	c.framesSent.WithLabelValues(iface, message).Inc()
}

func (c *Collector) EventReceived(iface, message string) {
	if c == nil {
		return
	}
	c.framesReceived.WithLabelValues(iface, message).Inc()
}

// Drop reasons
const (
	ReasonUnknownObject = "unknown_object"
	ReasonDecode        = "decode"
	ReasonNoListener    = "no_listener"
)

func (c *Collector) EventDropped(reason string) {
	if c == nil {
		return
	}
	c.framesDropped.WithLabelValues(reason).Inc()
}

func (c *Collector) PingAnswered() {
	if c == nil {
		return
	}
	c.pings.Inc()
}

func (c *Collector) Roundtrip() {
	if c == nil {
		return
	}
	c.roundtrips.Inc()
}

func (c *Collector) ConfigureAcked() {
	if c == nil {
		return
	}
	c.configures.Inc()
}

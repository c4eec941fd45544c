// Package metrics exposes Prometheus metrics for the view engine.
// Recording functions are safe no-ops until Register is called, so
// library use without a metrics endpoint costs nothing.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metrics collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "viewdeck").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for mutation duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the metrics collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
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
		Namespace: "viewdeck",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type collectors struct {
	mutationsTotal    *prometheus.CounterVec
	mutationDuration  *prometheus.HistogramVec
	updatesPublished  prometheus.Counter
	deliveryFailures  prometheus.Counter
	connectedClients  prometheus.Gauge
	activeViews       prometheus.Gauge
	rendersTotal      *prometheus.CounterVec
}

var (
	global     *collectors
	globalOnce sync.Once
)

// Register initializes the collectors against the configured registry.
// Subsequent calls are no-ops.
func Register(opts ...Option) {
	globalOnce.Do(func() {
		config := defaultConfig()
		for _, opt := range opts {
			opt(&config)
		}
		global = initCollectors(config)
	})
}

func initCollectors(config Config) *collectors {
	factory := promauto.With(config.Registry)

	return &collectors{
		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "mutations_total",
			Help:        "Total view mutations by action and status",
			ConstLabels: config.ConstLabels,
		}, []string{"action", "status"}),

		mutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "mutation_duration_seconds",
			Help:        "View mutation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"action"}),

		updatesPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "updates_published_total",
			Help:        "Total update deliveries queued to clients",
			ConstLabels: config.ConstLabels,
		}),

		deliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "delivery_failures_total",
			Help:        "Total per-client delivery failures (dropped updates)",
			ConstLabels: config.ConstLabels,
		}),

		connectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "connected_clients",
			Help:        "Number of connected push clients",
			ConstLabels: config.ConstLabels,
		}),

		activeViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_views",
			Help:        "Number of views in the store",
			ConstLabels: config.ConstLabels,
		}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "renders_total",
			Help:        "Total view renders by adapter",
			ConstLabels: config.ConstLabels,
		}, []string{"adapter"}),
	}
}

// RecordMutation records a mutation attempt with its outcome and
// duration in seconds.
func RecordMutation(action, status string, seconds float64) {
	if global != nil {
		global.mutationsTotal.WithLabelValues(action, status).Inc()
		global.mutationDuration.WithLabelValues(action).Observe(seconds)
	}
}

// RecordPublish records deliveries queued for one published update.
func RecordPublish(recipients int) {
	if global != nil {
		global.updatesPublished.Add(float64(recipients))
	}
}

// RecordDeliveryFailure records a dropped per-client delivery.
func RecordDeliveryFailure() {
	if global != nil {
		global.deliveryFailures.Inc()
	}
}

// RecordClientConnect records a client connection.
func RecordClientConnect() {
	if global != nil {
		global.connectedClients.Inc()
	}
}

// RecordClientDisconnect records a client disconnection.
func RecordClientDisconnect() {
	if global != nil {
		global.connectedClients.Dec()
	}
}

// RecordViewCount sets the active view gauge.
func RecordViewCount(n int) {
	if global != nil {
		global.activeViews.Set(float64(n))
	}
}

// RecordRender records a render by adapter type.
func RecordRender(adapter string) {
	if global != nil {
		global.rendersTotal.WithLabelValues(adapter).Inc()
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Dispatch related metrics
	MessagesSent      prometheus.Counter
	MessagesFailed    prometheus.Counter
	DispatchLatency   prometheus.Histogram
	QueuePendingDepth prometheus.Gauge
	Continuations     prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec

	// Provider metrics
	ProviderCalls *prometheus.CounterVec
}

// New creates application metrics under the given namespace. Metrics are not
// auto-registered so tests can build throwaway instances.
func New(namespace string) *Metrics {
	return &Metrics{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of queue entries delivered to the provider",
		}),
		MessagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_failed_total",
			Help:      "Total number of queue entries that ended in failed status",
		}),
		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent processing one dispatch batch",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		QueuePendingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_pending_depth",
			Help:      "Number of queue entries currently pending",
		}),
		Continuations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_continuations_total",
			Help:      "Number of self-trigger nudges emitted after a full batch",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of messaging provider calls",
		}, []string{"status"}),
	}
}

// Register registers all metrics on the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.MessagesSent,
		m.MessagesFailed,
		m.DispatchLatency,
		m.QueuePendingDepth,
		m.Continuations,
		m.DatabaseOperations,
		m.ProviderCalls,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

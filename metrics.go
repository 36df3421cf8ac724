package cell

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors of one or more Nuclei.
// A nil *Metrics records nothing.
type Metrics struct {
	queued      prometheus.Counter
	flushes     prometheus.Counter
	updates     prometheus.Counter
	skipped     *prometheus.CounterVec
	queueLength prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil. It panics if they are already registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cell",
			Subsystem: "nucleus",
			Name:      "queued_total",
			Help:      "Nodes queued for delivery.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cell",
			Subsystem: "nucleus",
			Name:      "flushes_total",
			Help:      "Queue flushes.",
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cell",
			Subsystem: "nucleus",
			Name:      "updates_total",
			Help:      "Update passes delivered.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cell",
			Subsystem: "nucleus",
			Name:      "skipped_updates_total",
			Help:      "Update requests ignored, by reason.",
		}, []string{"reason"}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cell",
			Subsystem: "nucleus",
			Name:      "queue_length",
			Help:      "Nodes waiting for the next flush.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queued, m.flushes, m.updates, m.skipped, m.queueLength)
	}
	return m
}

func (m *Metrics) incQueued() {
	if m != nil {
		m.queued.Inc()
	}
}

func (m *Metrics) incFlushes() {
	if m != nil {
		m.flushes.Inc()
	}
}

func (m *Metrics) incUpdates() {
	if m != nil {
		m.updates.Inc()
	}
}

func (m *Metrics) incSkipped(reason string) {
	if m != nil {
		m.skipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) setQueueLength(n int) {
	if m != nil {
		m.queueLength.Set(float64(n))
	}
}

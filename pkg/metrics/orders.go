package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks the order engine. A nil receiver records nothing.
type OrderMetrics struct {
	created     prometheus.Counter
	rejections  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	promoted    prometheus.Counter
	sweepFailed prometheus.Counter
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders committed by the entry processor.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_rejections_total",
			Help: "Order operations rejected, by error code.",
		}, []string{"code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Applied order status transitions.",
		}, []string{"from", "to"}),
		promoted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_sweep_promoted_total",
			Help: "Pending orders promoted by the expiry sweep.",
		}),
		sweepFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_sweep_failures_total",
			Help: "Per-order failures during the expiry sweep.",
		}),
	}
	reg.MustRegister(m.created, m.rejections, m.transitions, m.promoted, m.sweepFailed)
	return m
}

func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

func (m *OrderMetrics) IncRejection(code string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) AddSweep(promoted, failed int) {
	if m == nil || m.promoted == nil {
		return
	}
	m.promoted.Add(float64(promoted))
	m.sweepFailed.Add(float64(failed))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records intake and notification outcomes.
type OrderMetrics struct {
	ordersCreated  *prometheus.CounterVec
	ordersRejected *prometheus.CounterVec
	statusChanges  *prometheus.CounterVec
	pushSent       *prometheus.CounterVec
	tokensPruned   prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted at intake.",
	}, []string{"order_type"})
	ordersRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Orders rejected at intake.",
	}, []string{"reason"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status transitions applied.",
	}, []string{"status"})
	pushSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_notifications_total",
		Help: "Push notification delivery attempts.",
	}, []string{"outcome"})
	tokensPruned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "push_tokens_pruned_total",
		Help: "Device tokens dropped after the push backend rejected them.",
	})
	reg.MustRegister(ordersCreated, ordersRejected, statusChanges, pushSent, tokensPruned)
	return &OrderMetrics{
		ordersCreated:  ordersCreated,
		ordersRejected: ordersRejected,
		statusChanges:  statusChanges,
		pushSent:       pushSent,
		tokensPruned:   tokensPruned,
	}
}

// IncCreated increments the accepted-order counter for the order type.
func (m *OrderMetrics) IncCreated(orderType string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(orderType)).Inc()
}

// IncRejected increments the rejected-order counter for the reason.
func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.ordersRejected == nil {
		return
	}
	m.ordersRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncStatusChange increments the transition counter for the new status.
func (m *OrderMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPushSent increments the delivery counter for the outcome.
func (m *OrderMetrics) IncPushSent(outcome string) {
	if m == nil || m.pushSent == nil {
		return
	}
	m.pushSent.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTokensPruned counts device tokens dropped after rejection.
func (m *OrderMetrics) IncTokensPruned(count int) {
	if m == nil || m.tokensPruned == nil || count <= 0 {
		return
	}
	m.tokensPruned.Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

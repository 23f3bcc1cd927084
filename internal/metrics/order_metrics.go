package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций над заказами и позициями.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated prometheus.Counter
	ordersDeleted prometheus.Counter
	itemMutations *prometheus.CounterVec

	// Переходы статусов по осям
	statusTransitions  *prometheus.CounterVec
	paymentTransitions *prometheus.CounterVec

	// Пересчёт тотала
	recalcDuration prometheus.Histogram
	recalcTotal    prometheus.Counter

	// Отказы политики доступа
	accessDenied prometheus.Counter
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		itemMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_item_mutations_total",
			Help: "Total number of order item mutations by operation",
		}, []string{"op"}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_status_transitions_total",
			Help: "Total number of order status transitions by target status",
		}, []string{"to"}),
		paymentTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_payment_transitions_total",
			Help: "Total number of payment status transitions by target status",
		}, []string{"to"}),
		recalcDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_total_recalc_duration_seconds",
			Help:    "Duration of order total recalculations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		recalcTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_total_recalcs_total",
			Help: "Total number of order total recalculations",
		}),
		accessDenied: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_access_denied_total",
			Help: "Total number of requests rejected by the access policy",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordItemMutation фиксирует мутацию позиции (create/update/delete).
func (m *OrderMetrics) RecordItemMutation(op string) {
	m.itemMutations.WithLabelValues(op).Inc()
}

// RecordStatusTransition фиксирует переход статуса исполнения.
func (m *OrderMetrics) RecordStatusTransition(to string) {
	m.statusTransitions.WithLabelValues(to).Inc()
}

// RecordPaymentTransition фиксирует переход статуса оплаты.
func (m *OrderMetrics) RecordPaymentTransition(to string) {
	m.paymentTransitions.WithLabelValues(to).Inc()
}

// RecordRecalc фиксирует пересчёт тотала и его длительность.
func (m *OrderMetrics) RecordRecalc(duration time.Duration) {
	m.recalcTotal.Inc()
	m.recalcDuration.Observe(duration.Seconds())
}

// RecordAccessDenied увеличивает счётчик отказов политики доступа.
func (m *OrderMetrics) RecordAccessDenied() {
	m.accessDenied.Inc()
}

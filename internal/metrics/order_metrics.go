package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики оформления заказов и складских операций.
type OrderMetrics struct {
	// Счётчики операций
	placementStarted   prometheus.Counter
	placementCompleted prometheus.Counter
	placementRejected  prometheus.Counter
	placementPartial   prometheus.Counter

	// Гистограмма времени оформления
	placementDuration prometheus.Histogram

	// Счётчики складских отказов и событий outbox
	insufficientStock prometheus.Counter
	outboxEvents      prometheus.Counter
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
		placementStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "leathershop_order_placement_started_total",
			Help: "Total number of order placements started",
		}),
		placementCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "leathershop_order_placement_completed_total",
			Help: "Total number of order placements completed successfully",
		}),
		placementRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "leathershop_order_placement_rejected_total",
			Help: "Total number of order placements rejected during validation",
		}),
		placementPartial: registerCounter(registerer, prometheus.CounterOpts{
			Name: "leathershop_order_placement_partial_total",
			Help: "Total number of placements persisted with incomplete stock debits",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "leathershop_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "leathershop_insufficient_stock_total",
			Help: "Total number of operations rejected due to insufficient stock",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "leathershop_outbox_events_total",
			Help: "Total number of events enqueued to transactional outbox",
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

// RecordPlacementStarted увеличивает счётчик начатых оформлений.
func (m *OrderMetrics) RecordPlacementStarted() {
	m.placementStarted.Inc()
}

// RecordPlacementCompleted увеличивает счётчик успешных оформлений.
func (m *OrderMetrics) RecordPlacementCompleted() {
	m.placementCompleted.Inc()
}

// RecordPlacementRejected увеличивает счётчик отклонённых на валидации оформлений.
func (m *OrderMetrics) RecordPlacementRejected() {
	m.placementRejected.Inc()
}

// RecordPlacementPartial фиксирует заказ, сохранённый с неполным списанием остатков.
func (m *OrderMetrics) RecordPlacementPartial() {
	m.placementPartial.Inc()
}

// RecordPlacementDuration записывает длительность оформления.
func (m *OrderMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordInsufficientStock увеличивает счётчик отказов по нехватке остатка.
func (m *OrderMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

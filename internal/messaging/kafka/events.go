package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События заказов
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"

	// События склада
	EventTypeStockDebited  EventType = "stock.debited"
	EventTypeStockLow      EventType = "stock.low"
	EventTypeStockAdjusted EventType = "stock.adjusted"

	// События цен
	EventTypePriceChanged EventType = "price.changed"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "leathershop.order.events"
	TopicStockEvents     = "leathershop.stock.events"
	TopicDeadLetterQueue = "leathershop.dlq"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Number    string                 `json:"number,omitempty"`
	VendorID  string                 `json:"vendor_id,omitempty"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent представляет событие движения остатка
type StockEvent struct {
	EventType EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	Previous  int       `json:"previous"`
	New       int       `json:"new"`
	OrderID   string    `json:"order_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, number, vendorID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		Number:    number,
		VendorID:  vendorID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

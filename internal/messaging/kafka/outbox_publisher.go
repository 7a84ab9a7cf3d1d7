package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// EventEnvelope — wire-формат событий магазина в Kafka. В этом конверте
// события уходят и в основной топик, и в DLQ; утилита переобработки DLQ
// разбирает и собирает ровно его же.
type EventEnvelope struct {
	EventID       string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEventEnvelope заворачивает outbox-сообщение в конверт с моментом
// публикации.
func NewEventEnvelope(msg domain.OutboxMessage, publishedAt time.Time) EventEnvelope {
	return EventEnvelope{
		EventID:       msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishedAt:   publishedAt,
	}
}

// PartitionKey выбирает ключ партиционирования: события одного заказа
// должны попадать в одну партицию, чтобы смены статусов читались по порядку.
func (e EventEnvelope) PartitionKey() string {
	if e.AggregateID != "" {
		return e.AggregateID
	}
	return e.EventID
}

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic, now: time.Now}
}

// Publish отправляет событие в топик паблишера.
func (p *OutboxTopicPublisher) Publish(msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	envelope := NewEventEnvelope(msg, p.now().UTC())
	return p.producer.PublishEvent(p.topic, envelope.PartitionKey(), envelope)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)

package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

const (
	defaultPollInterval   = 1 * time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond

	// maxRetryBackoff ограничивает экспоненциальную паузу между
	// попытками, чтобы длинный retry не растягивал polling-цикл.
	maxRetryBackoff = 5 * time.Second
)

var (
	outboxPublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leathershop_outbox_publish_attempts_total",
		Help: "Total number of outbox publish attempts grouped by result.",
	}, []string{"result"})
	outboxPendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leathershop_outbox_pending_records",
		Help: "Current number of pending records in transactional outbox.",
	})
	outboxOldestPendingAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leathershop_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// Config настраивает publisher-воркер. Нулевые поля заменяются
// значениями по умолчанию в NewWorker.
type Config struct {
	Logger         *log.Entry
	DLQ            domain.OutboxPublisher
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Worker выгружает pending-события заказов из outbox и публикует их
// в Kafka. Событие, не ушедшее за MaxAttempts попыток, помечается
// failed и дублируется в DLQ вместе с причиной отказа.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	cfg       Config
}

// NewWorker создаёт воркер поверх репозитория outbox и publisher'а.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, cfg Config) *Worker {
	if cfg.Logger == nil {
		cfg.Logger = log.WithField("component", "outbox-worker")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	// Отрицательное значение отключает backoff совсем; ноль означает
	// «не задано» и заменяется умолчанием.
	switch {
	case cfg.RetryBaseDelay < 0:
		cfg.RetryBaseDelay = 0
	case cfg.RetryBaseDelay == 0:
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}

	return &Worker{repo: repo, publisher: publisher, cfg: cfg}
}

// Run опрашивает outbox до отмены ctx. Первый проход выполняется
// сразу: после рестарта backlog не должен ждать целый интервал.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.cfg.Logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.ProcessOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessOnce выполняет один polling-цикл: снимает метрики backlog,
// забирает батч и публикует его по порядку.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.observeBacklog()

	batch, err := w.repo.PullPending(w.cfg.BatchSize)
	if err != nil {
		w.cfg.Logger.WithError(err).Warn("failed to pull pending outbox messages")
		return
	}

	for _, msg := range batch {
		if ctx.Err() != nil {
			return
		}

		if err := w.publish(ctx, msg); err != nil {
			w.handleFailure(msg, err)
			continue
		}
		if err := w.repo.MarkSent(msg.ID); err != nil {
			w.cfg.Logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as sent")
		}
	}

	if len(batch) > 0 {
		w.observeBacklog()
	}
}

// publish пробует отправить событие с экспоненциальным backoff между
// попытками. Отмена ctx во время паузы обрывает retry сразу.
func (w *Worker) publish(ctx context.Context, msg domain.OutboxMessage) error {
	backoff := w.cfg.RetryBaseDelay
	var lastErr error

	for attempt := 0; attempt < w.cfg.MaxAttempts; attempt++ {
		if attempt > 0 && backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < maxRetryBackoff/2 {
				backoff *= 2
			} else {
				backoff = maxRetryBackoff
			}
		}

		if err := w.publisher.Publish(msg); err != nil {
			lastErr = err
			outboxPublishAttempts.WithLabelValues("retry_error").Inc()
			continue
		}

		outboxPublishAttempts.WithLabelValues("sent").Inc()
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.cfg.MaxAttempts, lastErr)
}

// handleFailure помечает событие failed и дублирует его в DLQ;
// отказ любого из этих шагов не прерывает обработку остального батча.
func (w *Worker) handleFailure(msg domain.OutboxMessage, pubErr error) {
	w.cfg.Logger.WithError(pubErr).WithFields(log.Fields{
		"outbox_id":  msg.ID,
		"event_type": msg.EventType,
	}).Error("outbox publish failed after retries")
	outboxPublishAttempts.WithLabelValues("failed").Inc()

	if err := w.publishToDLQ(msg, pubErr); err != nil {
		w.cfg.Logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to publish to DLQ")
		outboxPublishAttempts.WithLabelValues("dlq_failed").Inc()
	}
	if err := w.repo.MarkFailed(msg.ID); err != nil {
		w.cfg.Logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as failed")
	}
}

// dlqRecord — конверт события в DLQ: исходное сообщение плюс причина
// отказа. Этот формат читает cmd/dlq-reprocess при ручном replay.
type dlqRecord struct {
	OutboxID       string          `json:"outbox_id"`
	AggregateType  string          `json:"aggregate_type"`
	AggregateID    string          `json:"aggregate_id"`
	EventType      string          `json:"event_type"`
	Payload        json.RawMessage `json:"payload"`
	PublishError   string          `json:"publish_error"`
	DLQPublishedAt string          `json:"dlq_published_at"`
}

func (w *Worker) publishToDLQ(msg domain.OutboxMessage, pubErr error) error {
	if w.cfg.DLQ == nil {
		return nil
	}

	payload, err := json.Marshal(dlqRecord{
		OutboxID:       msg.ID,
		AggregateType:  msg.AggregateType,
		AggregateID:    msg.AggregateID,
		EventType:      msg.EventType,
		Payload:        json.RawMessage(msg.Payload),
		PublishError:   pubErr.Error(),
		DLQPublishedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal dlq record: %w", err)
	}

	dlqMsg := msg
	dlqMsg.Payload = payload
	if err := w.cfg.DLQ.Publish(dlqMsg); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}

// observeBacklog обновляет gauge-метрики текущего backlog.
func (w *Worker) observeBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.cfg.Logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	outboxPendingRecords.Set(float64(stats.PendingCount))

	age := 0.0
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		if since := time.Since(stats.OldestPendingAt).Seconds(); since > 0 {
			age = since
		}
	}
	outboxOldestPendingAge.Set(age)
}

package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

const (
	defaultRetentionInterval  = 10 * time.Minute
	defaultRetentionPeriod    = 72 * time.Hour
	defaultRetentionBatchSize = 500
)

var (
	outboxRetentionRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leathershop_outbox_retention_runs_total",
		Help: "Total number of outbox retention runs grouped by result.",
	}, []string{"result"})
	outboxRetentionDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leathershop_outbox_retention_deleted_total",
		Help: "Total number of deleted sent outbox messages.",
	})
	outboxRetentionLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leathershop_outbox_retention_last_deleted",
		Help: "Number of deleted messages during the last retention run.",
	})
)

// RetentionOptions задаёт параметры воркера очистки отправленных сообщений.
type RetentionOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	Retention time.Duration
	BatchSize int
}

// RetentionOption настраивает RetentionWorker.
type RetentionOption func(*RetentionOptions)

// WithRetentionLogger задаёт logger для воркера.
func WithRetentionLogger(logger *log.Entry) RetentionOption {
	return func(opts *RetentionOptions) {
		opts.Logger = logger
	}
}

// WithRetentionInterval задаёт интервал между циклами очистки.
func WithRetentionInterval(interval time.Duration) RetentionOption {
	return func(opts *RetentionOptions) {
		opts.Interval = interval
	}
}

// WithRetentionPeriod задаёт срок хранения отправленных сообщений.
func WithRetentionPeriod(retention time.Duration) RetentionOption {
	return func(opts *RetentionOptions) {
		opts.Retention = retention
	}
}

// WithRetentionBatchSize задаёт размер порции для одного удаления.
func WithRetentionBatchSize(batchSize int) RetentionOption {
	return func(opts *RetentionOptions) {
		opts.BatchSize = batchSize
	}
}

// RetentionWorker периодически удаляет отправленные outbox-сообщения,
// вышедшие за срок хранения. Pending и failed сообщения не трогает.
type RetentionWorker struct {
	repo      domain.OutboxRepository
	logger    *log.Entry
	interval  time.Duration
	retention time.Duration
	batchSize int
}

// NewRetentionWorker создаёт воркер очистки отправленных сообщений.
func NewRetentionWorker(repo domain.OutboxRepository, options ...RetentionOption) *RetentionWorker {
	opts := RetentionOptions{
		Interval:  defaultRetentionInterval,
		Retention: defaultRetentionPeriod,
		BatchSize: defaultRetentionBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "outbox-retention-worker")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultRetentionInterval
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetentionPeriod
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultRetentionBatchSize
	}

	return &RetentionWorker{
		repo:      repo,
		logger:    logger,
		interval:  opts.Interval,
		retention: opts.Retention,
		batchSize: opts.BatchSize,
	}
}

// Run запускает периодическую очистку до отмены ctx.
func (w *RetentionWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("outbox retention worker is disabled: repo is nil")
		return
	}

	w.purge(ctx, time.Now().UTC().Add(-w.retention))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.purge(ctx, time.Now().UTC().Add(-w.retention))
		}
	}
}

func (w *RetentionWorker) purge(ctx context.Context, before time.Time) {
	deleted, err := w.PurgeBefore(ctx, before)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		outboxRetentionRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("outbox retention run failed")
		return
	}

	outboxRetentionRunsTotal.WithLabelValues("ok").Inc()
	outboxRetentionLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("outbox retention completed")
	}
}

// PurgeBefore удаляет все отправленные сообщения старше before порциями batchSize.
func (w *RetentionWorker) PurgeBefore(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC().Add(-w.retention)
	}

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		deleted, err := w.repo.DeleteSentBefore(before, w.batchSize)
		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted > 0 {
			outboxRetentionDeletedTotal.Add(float64(deleted))
		}

		if deleted < w.batchSize {
			break
		}
	}

	return totalDeleted, nil
}

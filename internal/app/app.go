package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/leathershop/internal/health"
	"github.com/vladislavdragonenkov/leathershop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/leathershop/internal/outbox"
	"github.com/vladislavdragonenkov/leathershop/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/leathershop/internal/version"
)

// Пороги деградации outbox-пробы: backlog больше лимита или событие,
// висящее дольше максимума, означают проблемы с публикацией в Kafka.
const (
	outboxBacklogLimit  = 1000
	outboxBacklogMaxAge = 10 * time.Minute
)

// Run собирает зависимости и держит приложение запущенным до отмены ctx:
// REST API, отдельный listener метрик/health и outbox-воркер.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	var wg sync.WaitGroup
	if kafkaProducer != nil {
		worker := outbox.NewWorker(
			deps.Outbox,
			kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents),
			outbox.Config{
				Logger:       logger.WithField("component", "outbox-worker"),
				DLQ:          kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue),
				PollInterval: cfg.OutboxPollInterval,
				BatchSize:    cfg.OutboxBatchSize,
			},
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	} else {
		logger.Warn("kafka is not configured, outbox worker is disabled")
	}

	retention := outbox.NewRetentionWorker(
		deps.Outbox,
		outbox.WithRetentionLogger(logger.WithField("component", "outbox-retention")),
		outbox.WithRetentionPeriod(cfg.OutboxRetention),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		retention.Run(ctx)
	}()

	healthReg := healthcheck.NewRegistry(version.GetVersion())
	if deps.Store != nil {
		healthReg.Add(healthcheck.StoreProbe(deps.Store.Ping))
	}
	healthReg.Add(healthcheck.OutboxBacklogProbe(deps.Outbox, outboxBacklogLimit, outboxBacklogMaxAge))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthReg)

	router := httpapi.NewRouter(httpapi.Services{
		Orders:    deps.Orders,
		Stock:     deps.Stock,
		Pricing:   deps.Pricing,
		Sequences: deps.Sequences,
	}, logger.WithField("component", "httpapi"))

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthReg *healthcheck.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthReg.Healthz)
	mux.HandleFunc("/livez", healthcheck.Livez)
	mux.HandleFunc("/readyz", healthReg.Readyz)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

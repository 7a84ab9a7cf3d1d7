package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/metrics"
	"github.com/vladislavdragonenkov/leathershop/internal/order"
	"github.com/vladislavdragonenkov/leathershop/internal/pricing"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
	"github.com/vladislavdragonenkov/leathershop/internal/stock"
	"github.com/vladislavdragonenkov/leathershop/internal/storage/memory"
	"github.com/vladislavdragonenkov/leathershop/internal/storage/postgres"
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	Products  domain.ProductRepository
	Orders    *order.Service
	Stock     *stock.Service
	Pricing   *pricing.Service
	Sequences *sequence.Generator
	Outbox    domain.OutboxRepository
	Store     *postgres.Store
	Logger    *log.Entry
}

// NewDependencies собирает репозитории и сервисы. При пустом DSN
// используется in-memory хранилище — режим локальной разработки.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	var (
		store        *postgres.Store
		products     domain.ProductRepository
		priceRepo    domain.PriceRepository
		stockRepo    domain.StockRepository
		orderRepo    domain.OrderRepository
		seqRepo      domain.SequenceRepository
		movementRepo domain.MovementRepository
		outboxRepo   domain.OutboxRepository
	)

	if cfg.PostgresDSN != "" {
		var err error
		store, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		products = postgres.NewProductRepository(store)
		priceRepo = postgres.NewPriceRepository(store)
		stockRepo = postgres.NewStockRepository(store)
		orderRepo = postgres.NewOrderRepository(store)
		seqRepo = postgres.NewSequenceRepository(store)
		movementRepo = postgres.NewMovementRepository(store)
		outboxRepo = postgres.NewOutboxRepository(store)
		logger.Info("using postgres storage")
	} else {
		products = memory.NewProductRepository()
		priceRepo = memory.NewPriceRepository()
		stockRepo = memory.NewStockRepository()
		orderRepo = memory.NewOrderRepository()
		seqRepo = memory.NewSequenceRepository()
		movementRepo = memory.NewMovementRepository()
		outboxRepo = memory.NewOutboxRepository()
		logger.Warn("using in-memory storage, data will not survive restart")
	}

	seq := sequence.NewGenerator(seqRepo, logger.WithField("component", "sequence"))
	stockSvc := stock.NewService(stockRepo, products, movementRepo, seq, logger.WithField("component", "stock"))
	pricingSvc := pricing.NewService(priceRepo, products, seq, logger.WithField("component", "pricing"))
	orderSvc := order.NewService(
		orderRepo,
		stockSvc,
		seq,
		outboxRepo,
		metrics.NewOrderMetrics(),
		logger.WithField("component", "order"),
	)

	return &Dependencies{
		Products:  products,
		Orders:    orderSvc,
		Stock:     stockSvc,
		Pricing:   pricingSvc,
		Sequences: seq,
		Outbox:    outboxRepo,
		Store:     store,
		Logger:    logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

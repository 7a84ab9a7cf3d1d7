package pricing

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
)

// Service реализует версионированное хранение цен: «обновление» цены —
// это вставка новой текущей записи и архивирование предыдущей.
// История не удаляется никогда.
type Service struct {
	prices   domain.PriceRepository
	products domain.ProductRepository
	seq      *sequence.Generator
	logger   *log.Entry
}

// NewService конструирует сервис цен с зависимостями.
func NewService(
	prices domain.PriceRepository,
	products domain.ProductRepository,
	seq *sequence.Generator,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "pricing")
	}
	return &Service{prices: prices, products: products, seq: seq, logger: logger}
}

// SetCurrentPrice назначает товару новую текущую цену. Архивирование
// старых записей и вставка новой выполняются хранилищем в одной
// транзакции, поэтому окно «у товара нет текущей цены» исключено.
func (s *Service) SetCurrentPrice(productID string, amountMinor int64, promoMinor *int64, currency string) (domain.PriceRecord, error) {
	if _, err := s.products.FindByID(productID); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("lookup product %s: %w", productID, err)
	}

	rec := domain.PriceRecord{
		ID:          sequence.FormatID(domain.EntityPrices, s.seq.Next(domain.EntityPrices)),
		ProductID:   productID,
		AmountMinor: amountMinor,
		PromoMinor:  promoMinor,
		Currency:    currency,
		Current:     true,
		CreatedAt:   time.Now().UTC(),
		Lifecycle:   domain.ActiveLifecycle(),
	}

	if errs := rec.Validate(); len(errs) > 0 {
		return domain.PriceRecord{}, fmt.Errorf("validate price for %s: %w", productID, errs[0])
	}

	if err := s.prices.ReplaceCurrent(rec); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("replace current price for %s: %w", productID, err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": productID,
		"price_id":   rec.ID,
		"amount":     amountMinor,
		"currency":   currency,
	}).Info("current price replaced")

	return rec, nil
}

// GetCurrentPrice возвращает действующую цену товара.
func (s *Service) GetCurrentPrice(productID string) (domain.PriceRecord, error) {
	rec, err := s.prices.FindCurrent(productID)
	if err != nil {
		return domain.PriceRecord{}, fmt.Errorf("current price for %s: %w", productID, err)
	}
	return rec, nil
}

// GetHistory возвращает всю историю цен товара, новые первыми,
// включая архивные записи.
func (s *Service) GetHistory(productID string) ([]domain.PriceRecord, error) {
	history, err := s.prices.History(productID)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", productID, err)
	}
	return history, nil
}

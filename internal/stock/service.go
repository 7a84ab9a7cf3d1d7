package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
)

// Service — складская книга: одна активная запись на товар,
// остаток никогда не уходит в минус, каждая корректировка
// оставляет след в журнале движений.
type Service struct {
	stocks    domain.StockRepository
	products  domain.ProductRepository
	movements domain.MovementRepository
	seq       *sequence.Generator
	logger    *log.Entry
}

// NewService конструирует складской сервис с зависимостями.
func NewService(
	stocks domain.StockRepository,
	products domain.ProductRepository,
	movements domain.MovementRepository,
	seq *sequence.Generator,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "stock")
	}
	return &Service{
		stocks:    stocks,
		products:  products,
		movements: movements,
		seq:       seq,
		logger:    logger,
	}
}

// Create заводит складскую запись товара. Отказывает с ErrStockExists,
// если активная запись уже есть, и с ErrProductNotFound, если товара
// нет в каталоге. minimum < 0 трактуется как «взять значение по умолчанию».
func (s *Service) Create(productID string, quantity int, minimum int, location string) (domain.StockRecord, error) {
	if _, err := s.products.FindByID(productID); err != nil {
		return domain.StockRecord{}, fmt.Errorf("lookup product %s: %w", productID, err)
	}

	if minimum < 0 {
		minimum = domain.DefaultStockMinimum
	}
	if location == "" {
		location = domain.DefaultStockLocation
	}

	now := time.Now().UTC()
	rec := domain.StockRecord{
		ID:        sequence.FormatID(domain.EntityStocks, s.seq.Next(domain.EntityStocks)),
		ProductID: productID,
		Quantity:  quantity,
		Minimum:   minimum,
		Location:  location,
		CreatedAt: now,
		UpdatedAt: now,
		Lifecycle: domain.ActiveLifecycle(),
	}

	if errs := rec.Validate(); len(errs) > 0 {
		return domain.StockRecord{}, fmt.Errorf("validate stock for %s: %w", productID, errs[0])
	}

	if err := s.stocks.Create(rec); err != nil {
		return domain.StockRecord{}, fmt.Errorf("create stock for %s: %w", productID, err)
	}

	s.appendMovement(productID, domain.MovementTypeInitial, quantity, 0, quantity, "")

	s.logger.WithFields(log.Fields{
		"product_id": productID,
		"stock_id":   rec.ID,
		"quantity":   quantity,
	}).Info("stock record created")

	return rec, nil
}

// Get возвращает активную складскую запись товара.
func (s *Service) Get(productID string) (domain.StockRecord, error) {
	rec, err := s.stocks.FindByProduct(productID)
	if err != nil {
		return domain.StockRecord{}, fmt.Errorf("stock for %s: %w", productID, err)
	}
	return rec, nil
}

// SetQuantity перезаписывает остаток абсолютным значением.
func (s *Service) SetQuantity(productID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("set quantity for %s: %w", productID, domain.ErrQuantityNegative)
	}

	previous, err := s.stocks.FindByProduct(productID)
	if err != nil {
		return fmt.Errorf("stock for %s: %w", productID, err)
	}

	if err := s.stocks.SetQuantity(productID, quantity); err != nil {
		return fmt.Errorf("set quantity for %s: %w", productID, err)
	}

	s.appendMovement(productID, domain.MovementTypeOverwrite, quantity-previous.Quantity, previous.Quantity, quantity, "")
	return nil
}

// Adjust применяет относительную корректировку остатка. Для decrease
// списание условное и атомарное: при нехватке остатка возвращается
// ErrInsufficientStock, количество не меняется.
func (s *Service) Adjust(productID string, delta int, direction domain.AdjustDirection) (domain.Adjustment, error) {
	return s.adjust(productID, delta, direction, domain.MovementTypeManual, "")
}

// Debit списывает остаток под заказ и помечает движение ссылкой на него.
func (s *Service) Debit(productID string, qty int, orderID string) (domain.Adjustment, error) {
	return s.adjust(productID, qty, domain.AdjustDecrease, domain.MovementTypeSale, orderID)
}

func (s *Service) adjust(productID string, delta int, direction domain.AdjustDirection, movementType, referenceID string) (domain.Adjustment, error) {
	if delta <= 0 {
		return domain.Adjustment{}, fmt.Errorf("adjust %s: %w", productID, domain.ErrDeltaInvalid)
	}
	if direction != domain.AdjustIncrease && direction != domain.AdjustDecrease {
		return domain.Adjustment{}, fmt.Errorf("adjust %s: %w", productID, domain.ErrDirectionInvalid)
	}

	adj, err := s.stocks.Adjust(productID, delta, direction)
	if err != nil {
		return domain.Adjustment{}, fmt.Errorf("adjust %s: %w", productID, err)
	}

	signed := adj.New - adj.Previous
	s.appendMovement(productID, movementType, signed, adj.Previous, adj.New, referenceID)

	s.logger.WithFields(log.Fields{
		"product_id": productID,
		"direction":  direction,
		"previous":   adj.Previous,
		"new":        adj.New,
	}).Debug("stock adjusted")

	return adj, nil
}

// ListBelowMinimum возвращает активные записи с остатком на пороге или ниже.
// Хранилище не умеет сравнивать два поля записи между собой, поэтому
// фильтр считается на клиенте полным проходом по активным записям —
// O(число активных товаров) на вызов, приемлемо для целевых размеров каталога.
func (s *Service) ListBelowMinimum() ([]domain.StockRecord, error) {
	active, err := s.stocks.FindActive()
	if err != nil {
		return nil, fmt.Errorf("list active stock: %w", err)
	}

	result := make([]domain.StockRecord, 0)
	for _, rec := range active {
		if rec.BelowMinimum() {
			result = append(result, rec)
		}
	}
	return result, nil
}

// Movements возвращает журнал движений товара в хронологическом порядке.
func (s *Service) Movements(productID string) ([]domain.StockMovement, error) {
	movements, err := s.movements.List(productID)
	if err != nil {
		return nil, fmt.Errorf("movements for %s: %w", productID, err)
	}
	return movements, nil
}

// appendMovement пишет след в журнал. Журнал вспомогательный: его отказ
// логируется, но не валит основную операцию.
func (s *Service) appendMovement(productID, movementType string, delta, before, after int, referenceID string) {
	err := s.movements.Append(domain.StockMovement{
		ID:             uuid.NewString(),
		ProductID:      productID,
		Type:           movementType,
		Delta:          delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceID:    referenceID,
		Occurred:       time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("failed to append stock movement")
	}
}

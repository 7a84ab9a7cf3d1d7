package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/leathershop/internal/metrics"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
	"github.com/vladislavdragonenkov/leathershop/internal/stock"
)

// LineItem — запрошенная позиция заказа: товар, количество и цена за
// единицу, которую передал вызывающий. Цена фиксируется как снимок и
// не перечитывается из истории цен.
type LineItem struct {
	ProductID  string
	Qty        int
	PriceMinor int64
}

// Service реализует оформление заказов: валидацию позиций по остаткам,
// расчёт суммы, выпуск номера, сохранение и списание склада.
type Service struct {
	orders  domain.OrderRepository
	stock   *stock.Service
	seq     *sequence.Generator
	outbox  domain.OutboxRepository
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	// now подменяется в тестах для контроля границы месяца.
	now func() time.Time
}

// NewService конструирует сервис заказов. metrics может быть nil (тесты).
func NewService(
	orders domain.OrderRepository,
	stockSvc *stock.Service,
	seq *sequence.Generator,
	outbox domain.OutboxRepository,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order")
	}
	return &Service{
		orders:  orders,
		stock:   stockSvc,
		seq:     seq,
		outbox:  outbox,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Place оформляет заказ.
//
// Последовательность намеренно не обёрнута в одну транзакцию хранилища:
//  1. проходим по всем позициям и проверяем остатки — до единой записи;
//  2. считаем сумму по ценам вызывающего;
//  3. выпускаем номер месяца и внешний идентификатор;
//  4. сохраняем заказ в статусе pending;
//  5. списываем остаток по каждой позиции атомарным условным декрементом.
//
// Проверка на шаге 1 — советующая, не резерв: конкурентный заказ мог
// съесть остаток между шагами 1 и 5. Само списание условное, поэтому в
// минус остаток не уйдёт, но при срыве на шаге 5 заказ остаётся
// сохранённым в pending, а уже списанные позиции не откатываются —
// ошибка возвращается вызывающему для ручной сверки.
func (s *Service) Place(customer domain.Customer, items []LineItem, vendorID, notes string) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordPlacementStarted()
		defer func() {
			s.metrics.RecordPlacementDuration(time.Since(start))
		}()
	}

	order, err := s.place(customer, items, vendorID, notes)
	if err != nil {
		return order, err
	}

	if s.metrics != nil {
		s.metrics.RecordPlacementCompleted()
	}
	return order, nil
}

func (s *Service) place(customer domain.Customer, items []LineItem, vendorID, notes string) (domain.Order, error) {
	if err := s.validateRequest(customer, items, vendorID); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPlacementRejected()
		}
		return domain.Order{}, err
	}

	// Шаг 1: проверка остатков по каждой позиции — до единой записи.
	for _, item := range items {
		rec, err := s.stock.Get(item.ProductID)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordPlacementRejected()
			}
			if domain.IsNotFound(err) {
				return domain.Order{}, fmt.Errorf("validate item %s: %w", item.ProductID, domain.ErrInsufficientStock)
			}
			return domain.Order{}, fmt.Errorf("validate item %s: %w", item.ProductID, err)
		}
		if rec.Quantity < item.Qty {
			if s.metrics != nil {
				s.metrics.RecordPlacementRejected()
				s.metrics.RecordInsufficientStock()
			}
			return domain.Order{}, fmt.Errorf("validate item %s: %w", item.ProductID, domain.ErrInsufficientStock)
		}
	}

	now := s.now().UTC()
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, domain.OrderItem{
			ID:         uuid.NewString(),
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
			CreatedAt:  now,
		})
	}

	order := domain.Order{
		ID:         sequence.FormatID(domain.EntityOrders, s.seq.Next(domain.EntityOrders)),
		Number:     s.mintOrderNumber(now),
		Customer:   customer,
		VendorID:   vendorID,
		Items:      orderItems,
		TotalMinor: domain.ComputeTotal(orderItems),
		Status:     domain.OrderStatusPending,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordPlacementRejected()
		}
		return domain.Order{}, fmt.Errorf("validate order: %w", errs[0])
	}

	// Шаг 4: сохраняем заказ в статусе pending.
	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("persist order %s: %w", order.ID, err)
	}

	// Шаг 5: списание остатков. При срыве заказ не откатывается.
	for _, item := range order.Items {
		if _, err := s.stock.Debit(item.ProductID, item.Qty, order.ID); err != nil {
			if s.metrics != nil {
				s.metrics.RecordPlacementPartial()
				if domain.IsInsufficientStock(err) {
					s.metrics.RecordInsufficientStock()
				}
			}
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id":   order.ID,
				"product_id": item.ProductID,
			}).Error("stock debit failed after order was persisted")
			return order, fmt.Errorf("debit stock for %s: %w", item.ProductID, err)
		}
	}

	s.enqueueEvent(kafka.EventTypeOrderCreated, order)

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"number":   order.Number,
		"total":    order.TotalMinor,
		"items":    len(order.Items),
	}).Info("order placed")

	return order, nil
}

func (s *Service) validateRequest(customer domain.Customer, items []LineItem, vendorID string) error {
	if customer.Name == "" {
		return domain.ErrCustomerRequired
	}
	if vendorID == "" {
		return domain.ErrVendorRequired
	}
	if len(items) == 0 {
		return domain.ErrItemsRequired
	}
	for _, item := range items {
		if item.Qty <= 0 {
			return fmt.Errorf("item %s: %w", item.ProductID, domain.ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			return fmt.Errorf("item %s: %w", item.ProductID, domain.ErrItemPriceInvalid)
		}
	}
	return nil
}

// mintOrderNumber выпускает порядковый номер месяца вида PED-YYYYMM-NNNN.
// Номер берётся из атомарного помесячного счётчика, а не из подсчёта
// строк, поэтому конкурентные оформления одного месяца не коллидируют.
// Это этикетка для документов: ключом хранения служит Order.ID.
func (s *Service) mintOrderNumber(now time.Time) string {
	month := now.Format("200601")
	n := s.seq.NextNamed("pedidos-"+month, 1)
	return fmt.Sprintf("PED-%s-%04d", month, n)
}

// List возвращает заказы с учётом роли: empleado видит только свои,
// остальные роли — все, новые первыми.
func (s *Service) List(callerRole domain.Role, callerID string) ([]domain.Order, error) {
	vendorID := ""
	if callerRole == domain.RoleEmpleado {
		vendorID = callerID
	}

	orders, err := s.orders.List(vendorID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetByID возвращает заказ; empleado не видит чужие заказы.
func (s *Service) GetByID(orderID string, callerRole domain.Role, callerID string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}

	if callerRole == domain.RoleEmpleado && order.VendorID != callerID {
		return domain.Order{}, fmt.Errorf("get order %s: %w", orderID, domain.ErrForbidden)
	}

	return order, nil
}

// SetStatus меняет статус заказа. Проверяется только принадлежность
// токена к шести распознаваемым статусам; достижимость перехода из
// текущего состояния намеренно не контролируется — допустимые переходы
// остаются открытым продуктовым решением.
func (s *Service) SetStatus(orderID string, status domain.OrderStatus) error {
	if !domain.IsKnownStatus(status) {
		return fmt.Errorf("set status for %s: %w", orderID, domain.ErrStatusInvalid)
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return fmt.Errorf("get order %s: %w", orderID, err)
	}

	if err := s.orders.SetStatus(orderID, status); err != nil {
		return fmt.Errorf("set status for %s: %w", orderID, err)
	}

	order.Status = status
	s.enqueueEvent(kafka.EventTypeOrderStatusChanged, order)

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("order status changed")

	return nil
}

// enqueueEvent складывает событие заказа в outbox; публикацией занимается
// отдельный worker. Отказ outbox не валит бизнес-операцию.
func (s *Service) enqueueEvent(eventType kafka.EventType, order domain.Order) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(kafka.NewOrderEvent(
		eventType, order.ID, order.Number, order.VendorID, string(order.Status), nil,
	))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, остатки уже списаны, подтверждения ещё нет.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён продавцом.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusInProcess — заказ в сборке/производстве.
	OrderStatusInProcess OrderStatus = "in_process"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// knownStatuses перечисляет все распознаваемые токены статуса.
var knownStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusInProcess: {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// IsKnownStatus проверяет, входит ли токен в список распознаваемых.
// Достижимость перехода из текущего статуса намеренно НЕ проверяется:
// допускаются произвольные переходы, включая отмену из любого состояния.
func IsKnownStatus(s OrderStatus) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminalStatus сообщает, является ли статус конечным.
func IsTerminalStatus(s OrderStatus) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Customer — контактные данные покупателя, снимок на момент заказа.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID        string
	ProductID string
	Qty       int
	// PriceMinor — цена за единицу на момент заказа; снимок,
	// не зависящий от дальнейших изменений текущей цены товара.
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	// ID — внешний идентификатор хранения (например, PED-05001).
	ID string
	// Number — человекочитаемый порядковый номер месяца (PED-YYYYMM-NNNN).
	// Ярлык для документов и аудита, не ключ хранения.
	Number   string
	Customer Customer
	// VendorID — пользователь, оформивший заказ.
	VendorID    string
	Items       []OrderItem
	TotalMinor  int64
	Status      OrderStatus
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeTotal суммирует позиции: qty * price за единицу.
func ComputeTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Qty) * item.PriceMinor
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Customer.Name == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.VendorID == "" {
		errs = append(errs, ErrVendorRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if !IsKnownStatus(o.Status) {
		errs = append(errs, ErrStatusInvalid)
	}
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if o.TotalMinor != ComputeTotal(o.Items) {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

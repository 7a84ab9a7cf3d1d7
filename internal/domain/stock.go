package domain

import "time"

const (
	// DefaultStockMinimum — порог «мало на складе» по умолчанию.
	DefaultStockMinimum = 5
	// DefaultStockLocation — склад по умолчанию.
	DefaultStockLocation = "Main Warehouse"
)

// AdjustDirection задаёт направление относительной корректировки остатка.
type AdjustDirection string

const (
	AdjustIncrease AdjustDirection = "increase"
	AdjustDecrease AdjustDirection = "decrease"
)

// StockRecord — складская запись товара. На товар допускается не более
// одной активной записи; остаток никогда не уходит в минус.
type StockRecord struct {
	ID        string
	ProductID string
	Quantity  int
	// Minimum — порог, ниже (или на уровне) которого товар попадает
	// в выборку «требует пополнения».
	Minimum   int
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time

	Lifecycle Lifecycle
}

// Validate проверяет инварианты складской записи.
func (s *StockRecord) Validate() []error {
	var errs []error

	if s.ProductID == "" {
		errs = append(errs, ErrProductNotFound)
	}
	if s.Quantity < 0 {
		errs = append(errs, ErrQuantityNegative)
	}
	if s.Minimum < 0 {
		errs = append(errs, ErrMinimumNegative)
	}

	return errs
}

// BelowMinimum сообщает, достиг ли остаток порога пополнения.
func (s *StockRecord) BelowMinimum() bool {
	return s.Quantity <= s.Minimum
}

// Adjustment — результат относительной корректировки остатка.
// Значения «до/после» предназначены для аудита на стороне вызывающего.
type Adjustment struct {
	ProductID string
	Previous  int
	New       int
	Delta     int
	Direction AdjustDirection
}

// StockMovement — запись журнала движений остатка. Создаётся на каждую
// успешную корректировку: продажу, ручной ввод, пополнение.
type StockMovement struct {
	ID        string
	ProductID string
	Type      string
	// Delta положительная для прихода, отрицательная для расхода.
	Delta          int
	QuantityBefore int
	QuantityAfter  int
	// ReferenceID — идентификатор заказа, породившего движение (если есть).
	ReferenceID string
	Occurred    time.Time
}

// Типы движений остатка для журнала.
const (
	MovementTypeManual    = "manual_adjustment"
	MovementTypeSale      = "sale"
	MovementTypeRestock   = "restock"
	MovementTypeInitial   = "initial"
	MovementTypeOverwrite = "overwrite"
)

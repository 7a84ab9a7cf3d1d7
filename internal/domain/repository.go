package domain

// ProductRepository даёт ядру доступ на чтение к каталогу товаров.
type ProductRepository interface {
	// FindByID возвращает товар или ErrProductNotFound, если его нет.
	FindByID(id string) (Product, error)
}

// PriceRepository описывает требования к хранилищу истории цен.
type PriceRepository interface {
	// ReplaceCurrent архивирует все текущие записи товара (их должно быть
	// не больше одной, но реализация обязана переживать ноль и несколько)
	// и вставляет новую текущую запись — атомарно, одной транзакцией.
	ReplaceCurrent(rec PriceRecord) error
	// FindCurrent возвращает текущую цену товара или ErrPriceNotFound.
	FindCurrent(productID string) (PriceRecord, error)
	// History возвращает все записи товара, новые первыми, включая архивные.
	History(productID string) ([]PriceRecord, error)
}

// StockRepository описывает требования к хранилищу складских записей.
type StockRepository interface {
	// Create сохраняет новую запись; ErrStockExists, если у товара уже есть активная.
	Create(rec StockRecord) error
	// FindByProduct возвращает активную запись товара или ErrStockNotFound.
	FindByProduct(productID string) (StockRecord, error)
	// FindActive возвращает все активные записи.
	FindActive() ([]StockRecord, error)
	// SetQuantity перезаписывает остаток абсолютным значением.
	SetQuantity(productID string, quantity int) error
	// Adjust применяет относительную корректировку одной атомарной операцией:
	// для decrease реализация обязана выполнять условное списание
	// (quantity >= delta), а не чтение-затем-запись. При нехватке остатка —
	// ErrInsufficientStock, остаток не меняется.
	Adjust(productID string, delta int, direction AdjustDirection) (Adjustment, error)
	// Deactivate мягко выводит запись из оборота.
	Deactivate(productID string) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// List возвращает заказы, новые первыми; vendorID != "" ограничивает выборку продавцом.
	List(vendorID string) ([]Order, error)
	// SetStatus обновляет статус заказа.
	SetStatus(id string, status OrderStatus) error
}

// SequenceRepository хранит счётчики последовательностей.
type SequenceRepository interface {
	// Next атомарно выполняет «прочитать-увеличить-записать» счётчика name.
	// Первый вызов для незнакомого name засевает счётчик значением seed
	// и возвращает его — в той же атомарной операции, чтобы два первых
	// вызова не получили одинаковое значение.
	Next(name string, seed int64) (int64, error)
}

// MovementRepository хранит журнал движений остатков.
type MovementRepository interface {
	Append(m StockMovement) error
	// List возвращает движения товара в хронологическом порядке.
	List(productID string) ([]StockMovement, error)
}

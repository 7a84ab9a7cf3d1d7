package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrStockNotFound возвращается, если для товара нет активной складской записи.
	ErrStockNotFound = errors.New("stock record not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPriceNotFound возвращается, если у товара нет текущей цены.
	ErrPriceNotFound = errors.New("current price not found")
	// ErrStockExists сигнализирует о нарушении уникальности: у товара уже есть активная складская запись.
	ErrStockExists = errors.New("active stock record already exists")
	// ErrInsufficientStock — запрошенное количество превышает доступный остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStatusInvalid — неизвестный токен статуса заказа.
	ErrStatusInvalid = errors.New("unknown order status")
	// ErrForbidden — у вызывающего нет прав на чтение или изменение ресурса.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable — транзакция в хранилище прервана; временная ошибка.
	ErrStoreUnavailable = errors.New("store transaction aborted")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// Ошибки валидации входных данных заказа.
	ErrCustomerRequired = errors.New("customer name is required")
	ErrItemsRequired    = errors.New("order must contain at least one item")
	ErrItemQtyInvalid   = errors.New("item quantity must be greater than zero")
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	ErrVendorRequired   = errors.New("vendor_id is required")
	ErrTotalMismatch    = errors.New("order total does not match items sum")

	// Ошибки валидации складских записей.
	ErrQuantityNegative = errors.New("quantity must be non-negative")
	ErrMinimumNegative  = errors.New("minimum threshold must be non-negative")
	ErrDeltaInvalid     = errors.New("adjustment delta must be greater than zero")
	ErrDirectionInvalid = errors.New("adjustment direction must be increase or decrease")

	// Ошибки валидации ценовых записей.
	ErrAmountNegative   = errors.New("price amount must be non-negative")
	ErrCurrencyRequired = errors.New("currency is required")
)

// validationErrs — ошибки пользовательского ввода. Только они сводятся
// к invalid_argument; всё прочее неопознанное считается отказом хранилища.
var validationErrs = []error{
	ErrStatusInvalid,
	ErrCustomerRequired,
	ErrItemsRequired,
	ErrItemQtyInvalid,
	ErrItemPriceInvalid,
	ErrVendorRequired,
	ErrTotalMismatch,
	ErrQuantityNegative,
	ErrMinimumNegative,
	ErrDeltaInvalid,
	ErrDirectionInvalid,
	ErrAmountNegative,
	ErrCurrencyRequired,
}

// IsValidation проверяет, относится ли ошибка к семейству валидации входа.
func IsValidation(err error) bool {
	for _, sentinel := range validationErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// FailureReason сводит доменную ошибку к стабильной машинно-читаемой причине.
// Наружу никогда не уходит сырая ошибка хранилища — только перечислимый код:
// нераспознанная ошибка (обёрнутая ошибка драйвера, обрыв соединения)
// классифицируется как временная недоступность хранилища, а не как ошибка
// запроса клиента.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrStockNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrPriceNotFound):
		return "not_found"
	case errors.Is(err, ErrStockExists):
		return "conflict"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case IsValidation(err):
		return "invalid_argument"
	default:
		return "store_unavailable"
	}
}

// IsNotFound проверяет, относится ли ошибка к семейству NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrStockNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPriceNotFound)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

package domain

import "time"

// PriceRecord — одна запись в истории цен товара.
// Записи иммутабельны: смена цены — это вставка новой текущей записи
// и архивирование предыдущей, а не обновление «на месте».
type PriceRecord struct {
	ID        string
	ProductID string
	// AmountMinor — цена в минимальных денежных единицах (центы).
	AmountMinor int64
	// PromoMinor — опциональная промо-цена; nil, если промо нет.
	PromoMinor *int64
	Currency   string
	// Current помечает единственную действующую запись товара.
	Current   bool
	CreatedAt time.Time

	Lifecycle Lifecycle
}

// Validate проверяет корректность полей ценовой записи.
func (p *PriceRecord) Validate() []error {
	var errs []error

	if p.ProductID == "" {
		errs = append(errs, ErrProductNotFound)
	}
	if p.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if p.PromoMinor != nil && *p.PromoMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if p.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}

	return errs
}

package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

type customerPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type orderItemPayload struct {
	ID         string `json:"id,omitempty"`
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderPayload struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	Customer   customerPayload    `json:"customer"`
	VendorID   string             `json:"vendor_id"`
	Items      []orderItemPayload `json:"items"`
	TotalMinor int64              `json:"total_minor"`
	Status     string             `json:"status"`
	Notes      string             `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toOrderPayload(o domain.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemPayload{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderPayload{
		ID:     o.ID,
		Number: o.Number,
		Customer: customerPayload{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		VendorID:   o.VendorID,
		Items:      items,
		TotalMinor: o.TotalMinor,
		Status:     string(o.Status),
		Notes:      o.Notes,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func toOrderPayloads(orders []domain.Order) []orderPayload {
	result := make([]orderPayload, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderPayload(o))
	}
	return result
}

type stockPayload struct {
	ID        string     `json:"id"`
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Minimum   int        `json:"minimum"`
	Location  string     `json:"location"`
	Active    bool       `json:"active"`
	RetiredAt *time.Time `json:"retired_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toStockPayload(rec domain.StockRecord) stockPayload {
	return stockPayload{
		ID:        rec.ID,
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		Minimum:   rec.Minimum,
		Location:  rec.Location,
		Active:    rec.Lifecycle.Active,
		RetiredAt: rec.Lifecycle.RetiredAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func toStockPayloads(records []domain.StockRecord) []stockPayload {
	result := make([]stockPayload, 0, len(records))
	for _, rec := range records {
		result = append(result, toStockPayload(rec))
	}
	return result
}

type movementPayload struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	Type           string    `json:"type"`
	Delta          int       `json:"delta"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	Occurred       time.Time `json:"occurred_at"`
}

func toMovementPayloads(movements []domain.StockMovement) []movementPayload {
	result := make([]movementPayload, 0, len(movements))
	for _, m := range movements {
		result = append(result, movementPayload{
			ID:             m.ID,
			ProductID:      m.ProductID,
			Type:           m.Type,
			Delta:          m.Delta,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			ReferenceID:    m.ReferenceID,
			Occurred:       m.Occurred,
		})
	}
	return result
}

type pricePayload struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	AmountMinor int64      `json:"amount_minor"`
	PromoMinor  *int64     `json:"promo_minor,omitempty"`
	Currency    string     `json:"currency"`
	Current     bool       `json:"current"`
	Active      bool       `json:"active"`
	RetiredAt   *time.Time `json:"retired_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toPricePayload(rec domain.PriceRecord) pricePayload {
	return pricePayload{
		ID:          rec.ID,
		ProductID:   rec.ProductID,
		AmountMinor: rec.AmountMinor,
		PromoMinor:  rec.PromoMinor,
		Currency:    rec.Currency,
		Current:     rec.Current,
		Active:      rec.Lifecycle.Active,
		RetiredAt:   rec.Lifecycle.RetiredAt,
		CreatedAt:   rec.CreatedAt,
	}
}

func toPricePayloads(records []domain.PriceRecord) []pricePayload {
	result := make([]pricePayload, 0, len(records))
	for _, rec := range records {
		result = append(result, toPricePayload(rec))
	}
	return result
}

package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// stockRepositoryInMemory — in-memory складские записи, по одной активной на товар.
type stockRepositoryInMemory struct {
	mu    sync.Mutex
	items map[string]domain.StockRecord
}

// NewStockRepository создаёт in-memory реализацию StockRepository.
func NewStockRepository() domain.StockRepository {
	return &stockRepositoryInMemory{items: make(map[string]domain.StockRecord)}
}

// Create сохраняет запись, если у товара ещё нет активной.
func (r *stockRepositoryInMemory) Create(rec domain.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[rec.ProductID]; ok && existing.Lifecycle.Active {
		return domain.ErrStockExists
	}
	r.items[rec.ProductID] = rec
	return nil
}

// FindByProduct возвращает активную запись товара или ErrStockNotFound.
func (r *stockRepositoryInMemory) FindByProduct(productID string) (domain.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[productID]
	if !ok || !rec.Lifecycle.Active {
		return domain.StockRecord{}, domain.ErrStockNotFound
	}
	return rec, nil
}

// FindActive возвращает все активные записи в детерминированном порядке.
func (r *stockRepositoryInMemory) FindActive() ([]domain.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.StockRecord, 0, len(r.items))
	for _, rec := range r.items {
		if rec.Lifecycle.Active {
			result = append(result, rec)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})

	return result, nil
}

// SetQuantity перезаписывает остаток абсолютным значением.
func (r *stockRepositoryInMemory) SetQuantity(productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[productID]
	if !ok || !rec.Lifecycle.Active {
		return domain.ErrStockNotFound
	}

	rec.Quantity = quantity
	rec.UpdatedAt = time.Now().UTC()
	r.items[productID] = rec
	return nil
}

// Adjust выполняет условную корректировку остатка под мьютексом:
// проверка достаточности и списание неразделимы, как того требует
// контракт decrease.
func (r *stockRepositoryInMemory) Adjust(productID string, delta int, direction domain.AdjustDirection) (domain.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[productID]
	if !ok || !rec.Lifecycle.Active {
		return domain.Adjustment{}, domain.ErrStockNotFound
	}

	previous := rec.Quantity
	switch direction {
	case domain.AdjustIncrease:
		rec.Quantity = previous + delta
	case domain.AdjustDecrease:
		if previous < delta {
			return domain.Adjustment{}, domain.ErrInsufficientStock
		}
		rec.Quantity = previous - delta
	default:
		return domain.Adjustment{}, domain.ErrDirectionInvalid
	}

	rec.UpdatedAt = time.Now().UTC()
	r.items[productID] = rec

	return domain.Adjustment{
		ProductID: productID,
		Previous:  previous,
		New:       rec.Quantity,
		Delta:     delta,
		Direction: direction,
	}, nil
}

// Deactivate мягко выводит запись из оборота.
func (r *stockRepositoryInMemory) Deactivate(productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[productID]
	if !ok || !rec.Lifecycle.Active {
		return domain.ErrStockNotFound
	}

	rec.Lifecycle.Retire(time.Now().UTC())
	r.items[productID] = rec
	return nil
}

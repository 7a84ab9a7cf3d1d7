package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// priceRepositoryInMemory — in-memory история цен.
type priceRepositoryInMemory struct {
	mu sync.RWMutex
	// records хранит все записи товара, включая архивные.
	records map[string][]domain.PriceRecord
}

// NewPriceRepository создаёт in-memory реализацию PriceRepository.
func NewPriceRepository() domain.PriceRepository {
	return &priceRepositoryInMemory{records: make(map[string][]domain.PriceRecord)}
}

// ReplaceCurrent под одним мьютексом архивирует все текущие записи товара
// и добавляет новую — снаружи операция видна как атомарная, окна
// «у товара нет текущей цены» не существует.
func (r *priceRepositoryInMemory) ReplaceCurrent(rec domain.PriceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	history := r.records[rec.ProductID]
	for i := range history {
		if history[i].Current {
			history[i].Current = false
			history[i].Lifecycle.Retire(now)
		}
	}
	r.records[rec.ProductID] = append(history, rec)
	return nil
}

// FindCurrent возвращает текущую цену товара или ErrPriceNotFound.
func (r *priceRepositoryInMemory) FindCurrent(productID string) (domain.PriceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records[productID] {
		if rec.Current {
			return rec, nil
		}
	}
	return domain.PriceRecord{}, domain.ErrPriceNotFound
}

// History возвращает все записи товара, новые первыми.
func (r *priceRepositoryInMemory) History(productID string) ([]domain.PriceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.records[productID]
	result := make([]domain.PriceRecord, len(history))
	copy(result, history)

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

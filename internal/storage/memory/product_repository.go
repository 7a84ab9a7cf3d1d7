package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// productRepositoryInMemory — справочник товаров для тестов и локальной разработки.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository создаёт in-memory реализацию ProductRepository.
func NewProductRepository() *productRepositoryInMemory {
	return &productRepositoryInMemory{items: make(map[string]domain.Product)}
}

// Put добавляет или заменяет товар; используется тестами и сидерами.
func (r *productRepositoryInMemory) Put(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[product.ID] = product
}

// FindByID возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) FindByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

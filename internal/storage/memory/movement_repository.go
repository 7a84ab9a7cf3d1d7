package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// movementRepositoryInMemory хранит журнал движений остатков в памяти.
type movementRepositoryInMemory struct {
	mu        sync.RWMutex
	movements map[string][]domain.StockMovement
}

// NewMovementRepository создаёт in-memory реализацию MovementRepository.
func NewMovementRepository() domain.MovementRepository {
	return &movementRepositoryInMemory{movements: make(map[string][]domain.StockMovement)}
}

// Append добавляет движение в журнал товара.
func (r *movementRepositoryInMemory) Append(m domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.movements[m.ProductID] = append(r.movements[m.ProductID], m)
	return nil
}

// List возвращает движения товара в хронологическом порядке.
func (r *movementRepositoryInMemory) List(productID string) ([]domain.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movements := r.movements[productID]
	result := make([]domain.StockMovement, len(movements))
	copy(result, movements)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Occurred.Before(result[j].Occurred)
	})

	return result, nil
}

package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// sequenceRepositoryInMemory — in-memory реализация SequenceRepository.
// Мьютекс делает «прочитать-увеличить-записать» атомарным в рамках процесса.
type sequenceRepositoryInMemory struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewSequenceRepository возвращает in-memory хранилище счётчиков для тестов и локальной разработки.
func NewSequenceRepository() domain.SequenceRepository {
	return &sequenceRepositoryInMemory{counters: make(map[string]int64)}
}

// Next атомарно засевает или инкрементирует счётчик name.
func (r *sequenceRepositoryInMemory) Next(name string, seed int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.counters[name]
	if !ok {
		r.counters[name] = seed
		return seed, nil
	}

	value++
	r.counters[name] = value
	return value, nil
}

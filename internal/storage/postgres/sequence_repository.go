package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type sequenceRepository struct {
	db *sql.DB
}

// NewSequenceRepository создаёт PostgreSQL-реализацию SequenceRepository.
func NewSequenceRepository(store *Store) domain.SequenceRepository {
	return &sequenceRepository{db: store.DB()}
}

// Next выполняет засев и инкремент одним атомарным запросом: UPSERT
// с RETURNING исключает гонку «два первых вызова получили seed».
func (r *sequenceRepository) Next(name string, seed int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sequence_counters (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value
	`, name, seed).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}

	return value, nil
}

var _ domain.SequenceRepository = (*sequenceRepository)(nil)

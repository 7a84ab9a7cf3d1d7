package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

type movementRepository struct {
	db *sql.DB
}

// NewMovementRepository создаёт PostgreSQL-реализацию MovementRepository.
func NewMovementRepository(store *Store) domain.MovementRepository {
	return &movementRepository{db: store.DB()}
}

func (r *movementRepository) Append(m domain.StockMovement) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_movements (
			id, product_id, type, delta, quantity_before, quantity_after,
			reference_id, occurred_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		m.ID, m.ProductID, m.Type, m.Delta, m.QuantityBefore, m.QuantityAfter,
		m.ReferenceID, m.Occurred,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}

	return nil
}

func (r *movementRepository) List(productID string) ([]domain.StockMovement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, type, delta, quantity_before, quantity_after, reference_id, occurred_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY occurred_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("query stock movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0)
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.Type, &m.Delta, &m.QuantityBefore, &m.QuantityAfter,
			&m.ReferenceID, &m.Occurred,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}

	return movements, nil
}

var _ domain.MovementRepository = (*movementRepository)(nil)

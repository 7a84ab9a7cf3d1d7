package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) FindByID(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		p         domain.Product
		retiredAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, created_at, active, retired_at
		FROM products
		WHERE id = $1 AND active
	`, id).Scan(&p.ID, &p.CategoryID, &p.Name, &p.CreatedAt, &p.Lifecycle.Active, &retiredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	if retiredAt.Valid {
		t := retiredAt.Time.UTC()
		p.Lifecycle.RetiredAt = &t
	}

	return p, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

type stockRepository struct {
	db *sql.DB
}

// NewStockRepository создаёт PostgreSQL-реализацию StockRepository.
func NewStockRepository(store *Store) domain.StockRepository {
	return &stockRepository{db: store.DB()}
}

func (r *stockRepository) Create(rec domain.StockRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_records (
			id, product_id, quantity, minimum, location,
			created_at, updated_at, active, retired_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,NULL)
	`,
		rec.ID, rec.ProductID, rec.Quantity, rec.Minimum, rec.Location,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		// Частичный уникальный индекс по активным записям: дубликат
		// означает, что у товара уже есть живая складская запись.
		if isUniqueViolation(err) {
			return domain.ErrStockExists
		}
		return fmt.Errorf("insert stock record: %w", err)
	}

	return nil
}

func (r *stockRepository) FindByProduct(productID string) (domain.StockRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rec, err := scanStockRecord(r.db.QueryRowContext(ctx, `
		SELECT id, product_id, quantity, minimum, location, created_at, updated_at, active, retired_at
		FROM stock_records
		WHERE product_id = $1 AND active
	`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StockRecord{}, domain.ErrStockNotFound
		}
		return domain.StockRecord{}, fmt.Errorf("select stock record: %w", err)
	}

	return rec, nil
}

func (r *stockRepository) FindActive() ([]domain.StockRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, minimum, location, created_at, updated_at, active, retired_at
		FROM stock_records
		WHERE active
		ORDER BY product_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active stock records: %w", err)
	}
	defer rows.Close()

	result := make([]domain.StockRecord, 0)
	for rows.Next() {
		rec, err := scanStockRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock records: %w", err)
	}

	return result, nil
}

func (r *stockRepository) SetQuantity(productID string, quantity int) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE stock_records
		SET quantity = $2,
		    updated_at = $3
		WHERE product_id = $1 AND active
	`, productID, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set stock quantity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrStockNotFound
	}

	return nil
}

// Adjust выполняет корректировку одним условным UPDATE: для списания
// предикат quantity >= delta встроен в сам запрос, поэтому два
// конкурентных списания не могут увести остаток в минус.
func (r *stockRepository) Adjust(productID string, delta int, direction domain.AdjustDirection) (domain.Adjustment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	signed := delta
	if direction == domain.AdjustDecrease {
		signed = -delta
	}

	var previous, current int
	err := r.db.QueryRowContext(ctx, `
		UPDATE stock_records
		SET quantity = quantity + $2,
		    updated_at = $3
		WHERE product_id = $1
		  AND active
		  AND quantity + $2 >= 0
		RETURNING quantity - $2, quantity
	`, productID, signed, time.Now().UTC()).Scan(&previous, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Adjustment{}, r.classifyAdjustMiss(ctx, productID)
		}
		return domain.Adjustment{}, fmt.Errorf("adjust stock quantity: %w", err)
	}

	return domain.Adjustment{
		ProductID: productID,
		Previous:  previous,
		New:       current,
		Delta:     delta,
		Direction: direction,
	}, nil
}

func (r *stockRepository) Deactivate(productID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE stock_records
		SET active = FALSE,
		    retired_at = $2,
		    updated_at = $2
		WHERE product_id = $1 AND active
	`, productID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate stock record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrStockNotFound
	}

	return nil
}

// classifyAdjustMiss различает «записи нет» и «остатка не хватило»:
// условный UPDATE не затронул ни одной строки в обоих случаях.
func (r *stockRepository) classifyAdjustMiss(ctx context.Context, productID string) error {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM stock_records WHERE product_id = $1 AND active
	`, productID).Scan(&id)
	if err == nil {
		return domain.ErrInsufficientStock
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrStockNotFound
	}
	return fmt.Errorf("check stock record exists: %w", err)
}

func scanStockRecord(row rowScanner) (domain.StockRecord, error) {
	var (
		rec       domain.StockRecord
		retiredAt sql.NullTime
	)
	if err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.Quantity, &rec.Minimum, &rec.Location,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.Lifecycle.Active, &retiredAt,
	); err != nil {
		return domain.StockRecord{}, err
	}
	if retiredAt.Valid {
		t := retiredAt.Time.UTC()
		rec.Lifecycle.RetiredAt = &t
	}
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.StockRepository = (*stockRepository)(nil)

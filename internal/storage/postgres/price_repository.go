package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

type priceRepository struct {
	db *sql.DB
}

// NewPriceRepository создаёт PostgreSQL-реализацию PriceRepository.
func NewPriceRepository(store *Store) domain.PriceRepository {
	return &priceRepository{db: store.DB()}
}

// ReplaceCurrent архивирует текущие записи товара и вставляет новую
// одной транзакцией: между двумя шагами не бывает состояния
// «у товара нет текущей цены».
func (r *priceRepository) ReplaceCurrent(rec domain.PriceRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return transientErr("begin replace price tx", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE price_records
		SET current = FALSE,
		    active = FALSE,
		    retired_at = $2
		WHERE product_id = $1
		  AND current
	`, rec.ProductID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("retire current price: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO price_records (
			id, product_id, amount_minor, promo_minor, currency,
			current, created_at, active, retired_at
		) VALUES ($1,$2,$3,$4,$5,TRUE,$6,TRUE,NULL)
	`,
		rec.ID, rec.ProductID, rec.AmountMinor, promoToNull(rec.PromoMinor),
		rec.Currency, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price record: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return transientErr("commit replace current price", err)
	}

	return nil
}

func (r *priceRepository) FindCurrent(productID string) (domain.PriceRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rec, err := scanPriceRecord(r.db.QueryRowContext(ctx, `
		SELECT id, product_id, amount_minor, promo_minor, currency, current, created_at, active, retired_at
		FROM price_records
		WHERE product_id = $1 AND current
	`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PriceRecord{}, domain.ErrPriceNotFound
		}
		return domain.PriceRecord{}, fmt.Errorf("select current price: %w", err)
	}

	return rec, nil
}

func (r *priceRepository) History(productID string) ([]domain.PriceRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, amount_minor, promo_minor, currency, current, created_at, active, retired_at
		FROM price_records
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.PriceRecord, 0)
	for rows.Next() {
		rec, err := scanPriceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price record: %w", err)
		}
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history: %w", err)
	}

	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPriceRecord(row rowScanner) (domain.PriceRecord, error) {
	var (
		rec       domain.PriceRecord
		promo     sql.NullInt64
		retiredAt sql.NullTime
	)
	if err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.AmountMinor, &promo, &rec.Currency,
		&rec.Current, &rec.CreatedAt, &rec.Lifecycle.Active, &retiredAt,
	); err != nil {
		return domain.PriceRecord{}, err
	}
	if promo.Valid {
		v := promo.Int64
		rec.PromoMinor = &v
	}
	if retiredAt.Valid {
		t := retiredAt.Time.UTC()
		rec.Lifecycle.RetiredAt = &t
	}
	return rec, nil
}

func promoToNull(promo *int64) sql.NullInt64 {
	if promo == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *promo, Valid: true}
}

var _ domain.PriceRepository = (*priceRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// openPingTimeout ограничивает первичную проверку доступности базы.
const openPingTimeout = 5 * time.Second

// PoolLimits задаёт размеры пула подключений. Сервис обслуживает
// короткие OLTP-запросы, поэтому по умолчанию пул скромный и тёплый.
type PoolLimits struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultPoolLimits — лимиты для одиночного инстанса API.
func DefaultPoolLimits() PoolLimits {
	return PoolLimits{
		MaxOpen:     16,
		MaxIdle:     8,
		MaxLifetime: 30 * time.Minute,
		MaxIdleTime: 5 * time.Minute,
	}
}

// Store владеет пулом подключений к PostgreSQL; все репозитории
// этого пакета строятся поверх него.
type Store struct {
	db *sql.DB
}

// Open открывает пул с лимитами по умолчанию и проверяет доступность базы.
func Open(ctx context.Context, dsn string) (*Store, error) {
	return OpenWithLimits(ctx, dsn, DefaultPoolLimits())
}

// OpenWithLimits — то же, что Open, но с явными лимитами пула.
func OpenWithLimits(ctx context.Context, dsn string, limits PoolLimits) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	db.SetMaxOpenConns(limits.MaxOpen)
	db.SetMaxIdleConns(limits.MaxIdle)
	db.SetConnMaxLifetime(limits.MaxLifetime)
	db.SetConnMaxIdleTime(limits.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, openPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// DB отдаёт raw-пул для мест, где нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность базы; таймаут задаёт вызывающая сторона
// через ctx.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}
	return s.db.PingContext(ctx)
}

// EnsureSchema доводит схему до последней встроенной ревизии.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// transientErr помечает отказ транзакции как временную недоступность
// хранилища: наверху такая ошибка сводится к store_unavailable, а не к
// ошибке клиентского запроса.
func transientErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}

// Close закрывает пул.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Схема разворачивается встроенными ревизиями: парой файлов
// NNNN_name.up.sql / NNNN_name.down.sql в sql/migrations. Параллельный
// запуск нескольких реплик сериализуется advisory-lock'ом, поэтому
// EnsureSchema безопасно вызывать при каждом старте сервиса.

//go:embed sql/migrations/*.sql
var revisionsFS embed.FS

const (
	revisionsDir   = "sql/migrations"
	schemaLockKey  = int64(20260315)
	schemaLockWait = 5 * time.Second
)

const schemaRevisionsDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// revision — скрипты одной версии схемы.
type revision struct {
	version int64
	name    string
	apply   string
	revert  string
}

// SchemaStatus — состояние схемы относительно встроенных ревизий.
type SchemaStatus struct {
	Version   int64
	Applied   int
	Available int
}

// MigrateUp применяет недостающие ревизии по возрастанию версии.
// steps=0 означает «все доступные».
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	revs, err := loadRevisions(revisionsFS)
	if err != nil {
		return err
	}

	return s.withSchemaLock(ctx, func(conn *sql.Conn) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}
		seen := make(map[int64]bool, len(applied))
		for _, v := range applied {
			seen[v] = true
		}

		done := 0
		for _, rev := range revs {
			if seen[rev.version] {
				continue
			}
			err := runRevision(ctx, conn, rev, rev.apply,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, rev.version, rev.name)
			if err != nil {
				return err
			}
			done++
			if steps > 0 && done >= steps {
				break
			}
		}
		return nil
	})
}

// MigrateDown откатывает steps последних применённых ревизий.
// steps<=0 трактуется как один шаг: случайный запуск без аргументов
// не должен снести всю схему.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}

	revs, err := loadRevisions(revisionsFS)
	if err != nil {
		return err
	}
	byVersion := make(map[int64]revision, len(revs))
	for _, rev := range revs {
		byVersion[rev.version] = rev
	}

	return s.withSchemaLock(ctx, func(conn *sql.Conn) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		for i := len(applied) - 1; i >= 0 && steps > 0; i, steps = i-1, steps-1 {
			rev, ok := byVersion[applied[i]]
			if !ok {
				return fmt.Errorf("applied version %d has no embedded revision to revert", applied[i])
			}
			err := runRevision(ctx, conn, rev, rev.revert,
				`DELETE FROM schema_migrations WHERE version = $1`, rev.version)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MigrationStatus возвращает версию схемы и счётчики ревизий.
func (s *Store) MigrationStatus(ctx context.Context) (SchemaStatus, error) {
	revs, err := loadRevisions(revisionsFS)
	if err != nil {
		return SchemaStatus{}, err
	}
	status := SchemaStatus{Available: len(revs)}

	if s == nil || s.db == nil {
		return SchemaStatus{}, fmt.Errorf("postgres store is not initialized")
	}

	queryCtx, cancel := context.WithTimeout(ctx, schemaLockWait)
	defer cancel()

	if _, err := s.db.ExecContext(queryCtx, schemaRevisionsDDL); err != nil {
		return SchemaStatus{}, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	err = s.db.QueryRowContext(queryCtx, `
		SELECT COALESCE(MAX(version), 0), COUNT(*)
		FROM schema_migrations
	`).Scan(&status.Version, &status.Applied)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("query schema status: %w", err)
	}

	return status, nil
}

// withSchemaLock выполняет fn на выделенном подключении под advisory-lock,
// предварительно создав учётную таблицу ревизий.
func (s *Store) withSchemaLock(ctx context.Context, fn func(conn *sql.Conn) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, schemaLockWait)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	defer func() {
		// Снимаем замок даже при отменённом ctx.
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", schemaLockKey)
	}()

	if _, err := conn.ExecContext(ctx, schemaRevisionsDDL); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	return fn(conn)
}

// runRevision выполняет скрипт ревизии и её учётную запись одной транзакцией:
// либо схема и журнал меняются вместе, либо никак.
func runRevision(ctx context.Context, conn *sql.Conn, rev revision, script, bookkeeping string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for revision %d_%s: %w", rev.version, rev.name, err)
	}

	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("run revision %d_%s: %w", rev.version, rev.name, err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record revision %d_%s: %w", rev.version, rev.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit revision %d_%s: %w", rev.version, rev.name, err)
	}

	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) ([]int64, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("query applied revisions: %w", err)
	}
	defer rows.Close()

	var versions []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied revision: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied revisions: %w", err)
	}

	return versions, nil
}

// loadRevisions собирает ревизии по up-файлам: парный down обязателен,
// версии не должны повторяться.
func loadRevisions(fsys fs.FS) ([]revision, error) {
	entries, err := fs.ReadDir(fsys, revisionsDir)
	if err != nil {
		return nil, fmt.Errorf("list schema revisions: %w", err)
	}

	var revs []revision
	for _, entry := range entries {
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(fileName, ".up.sql")
		versionStr, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("revision file %s: want NNNN_name.up.sql", fileName)
		}
		version, err := strconv.ParseInt(versionStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("revision file %s: bad version: %w", fileName, err)
		}

		apply, err := readRevisionScript(fsys, fileName)
		if err != nil {
			return nil, err
		}
		revert, err := readRevisionScript(fsys, base+".down.sql")
		if err != nil {
			return nil, fmt.Errorf("revision %d_%s: %w", version, name, err)
		}

		revs = append(revs, revision{version: version, name: name, apply: apply, revert: revert})
	}

	if len(revs) == 0 {
		return nil, fmt.Errorf("no schema revisions under %s", revisionsDir)
	}

	sort.Slice(revs, func(i, j int) bool { return revs[i].version < revs[j].version })
	for i := 1; i < len(revs); i++ {
		if revs[i].version == revs[i-1].version {
			return nil, fmt.Errorf("duplicate revision version %d", revs[i].version)
		}
	}

	return revs, nil
}

func readRevisionScript(fsys fs.FS, fileName string) (string, error) {
	raw, err := fs.ReadFile(fsys, path.Join(revisionsDir, fileName))
	if err != nil {
		return "", fmt.Errorf("read revision script %s: %w", fileName, err)
	}
	script := strings.TrimSpace(string(raw))
	if script == "" {
		return "", fmt.Errorf("revision script %s is empty", fileName)
	}
	return script, nil
}

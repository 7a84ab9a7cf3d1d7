package postgres

import (
	"context"
	"testing"
	"time"
)

func requireSchemaStatus(t *testing.T, ctx context.Context, store *Store, wantVersion int64, wantApplied int) {
	t.Helper()

	status, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("schema status: %v", err)
	}
	if status.Version != wantVersion || status.Applied != wantApplied {
		t.Fatalf("schema status = version %d applied %d, want version %d applied %d",
			status.Version, status.Applied, wantVersion, wantApplied)
	}
	if status.Available < status.Applied {
		t.Fatalf("applied %d exceeds available %d", status.Applied, status.Available)
	}
}

func TestSchemaRevisions_PostgresLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// Сбрасываем схему в ноль перед прогоном.
	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 0, 0)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up all: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 2, 2)

	// Повторный up ничего не меняет.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("idempotent migrate up: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 2, 2)

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down 1: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 1, 1)

	// steps<=0 откатывает ровно один шаг.
	if err := store.MigrateDown(ctx, 0); err != nil {
		t.Fatalf("migrate down default step: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 0, 0)

	// Откат пустой схемы — no-op.
	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down on empty schema: %v", err)
	}

	// Частичный up: ровно одна ревизия.
	if err := store.MigrateUp(ctx, 1); err != nil {
		t.Fatalf("migrate up one step: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 1, 1)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up remainder: %v", err)
	}
	requireSchemaStatus(t, ctx, store, 2, 2)
}

func TestSchemaRevisions_NilStoreGuards(t *testing.T) {
	var nilStore *Store
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := nilStore.MigrateUp(ctx, 0); err == nil {
		t.Fatal("MigrateUp on nil store should fail")
	}
	if err := nilStore.MigrateDown(ctx, 1); err == nil {
		t.Fatal("MigrateDown on nil store should fail")
	}
	if _, err := nilStore.MigrationStatus(ctx); err == nil {
		t.Fatal("MigrationStatus on nil store should fail")
	}
}

// Утилита migrate управляет ревизиями схемы PostgreSQL:
//
//	migrate up [-steps N]    — применить недостающие ревизии
//	migrate down [-steps N]  — откатить последние ревизии
//	migrate status           — показать версию схемы
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/storage/postgres"
)

const runTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dsn := fs.String("dsn", "", "PostgreSQL DSN (fallback: LEATHERSHOP_POSTGRES_DSN)")
	steps := fs.Int("steps", 0, "revisions to apply or revert (0 = all for up, one for down)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	command := fs.Arg(0)
	if command == "" {
		command = "status"
	}
	switch command {
	case "up", "down", "status":
	default:
		return fmt.Errorf("unknown command %q (use up, down or status)", command)
	}

	target := strings.TrimSpace(*dsn)
	if target == "" {
		target = strings.TrimSpace(os.Getenv("LEATHERSHOP_POSTGRES_DSN"))
	}
	if target == "" {
		return fmt.Errorf("postgres dsn is required: pass -dsn or set LEATHERSHOP_POSTGRES_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, target)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer store.Close()

	switch command {
	case "up":
		if err := store.MigrateUp(ctx, *steps); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case "down":
		if err := store.MigrateDown(ctx, *steps); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	}

	status, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("schema status: %w", err)
	}
	fmt.Fprintf(out, "schema version %d: applied %d of %d revisions\n",
		status.Version, status.Applied, status.Available)

	return nil
}

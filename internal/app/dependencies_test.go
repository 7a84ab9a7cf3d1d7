package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewDependencies_InMemory(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger.WithField("test", t.Name()))
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close()

	if deps.Store != nil {
		t.Error("empty dsn must not open a postgres store")
	}
	if deps.Orders == nil || deps.Stock == nil || deps.Pricing == nil || deps.Sequences == nil {
		t.Error("all services must be constructed")
	}
	if deps.Outbox == nil {
		t.Error("outbox repository must be constructed")
	}

	// Цепочка работоспособна: генератор выдаёт значения поверх памяти.
	if v := deps.Sequences.NextNamed("smoke", 1); v != 1 {
		t.Errorf("expected seeded value 1, got %d", v)
	}
}

package memory_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/storage/memory"
)

func TestOutboxRepository_EnqueuePull(t *testing.T) {
	repo := memory.NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "PED-05001",
		EventType:     "order.created",
		Payload:       []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected generated message id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != msg.ID {
		t.Fatalf("unexpected pending set: %+v", pending)
	}
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	repo := memory.NewOutboxRepository()
	msg, err := repo.Enqueue(domain.OutboxMessage{EventType: "order.created"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(pending))
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected zero pending, got %d", stats.PendingCount)
	}
}

func TestOutboxRepository_DeleteSentBefore(t *testing.T) {
	repo := memory.NewOutboxRepository()

	sent, err := repo.Enqueue(domain.OutboxMessage{EventType: "order.status_changed", Payload: []byte(`{}`)})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := repo.MarkSent(sent.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	if _, err := repo.Enqueue(domain.OutboxMessage{EventType: "order.placed", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	// Отправленное сообщение ещё не вышло за срок хранения.
	deleted, err := repo.DeleteSentBefore(time.Now().UTC().Add(-time.Hour), 100)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected nothing deleted, got %d", deleted)
	}

	deleted, err = repo.DeleteSentBefore(time.Now().UTC().Add(time.Hour), 100)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	// Pending сообщение остаётся в backlog.
	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected pending message untouched, got %d", len(pending))
	}
}

func TestOutboxRepository_MarkUnknown(t *testing.T) {
	repo := memory.NewOutboxRepository()
	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}
	if err := repo.MarkFailed("missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

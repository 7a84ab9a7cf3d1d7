package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/storage/memory"
)

func newOrder(id, vendorID string, createdAt time.Time) domain.Order {
	items := []domain.OrderItem{
		{ID: "item-1", ProductID: "PROD-1001", Qty: 2, PriceMinor: 10000, CreatedAt: createdAt},
	}
	return domain.Order{
		ID:         id,
		Number:     "PED-202608-0001",
		Customer:   domain.Customer{Name: "Maria Lopez"},
		VendorID:   vendorID,
		Items:      items,
		TotalMinor: domain.ComputeTotal(items),
		Status:     domain.OrderStatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("PED-05001", "USER-101", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(order); err == nil {
		t.Fatal("expected duplicate create to fail")
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID || len(stored.Items) != 1 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	repo := memory.NewOrderRepository()
	if _, err := repo.Get("PED-09999"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByVendor(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for _, o := range []domain.Order{
		newOrder("PED-05001", "USER-101", base),
		newOrder("PED-05002", "USER-102", base.Add(time.Minute)),
		newOrder("PED-05003", "USER-101", base.Add(2*time.Minute)),
	} {
		if err := repo.Create(o); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	all, err := repo.List("")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	// Новые первыми.
	if all[0].ID != "PED-05003" || all[2].ID != "PED-05001" {
		t.Fatalf("unexpected ordering: %s .. %s", all[0].ID, all[2].ID)
	}

	mine, err := repo.List("USER-101")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 vendor orders, got %d", len(mine))
	}
	for _, o := range mine {
		if o.VendorID != "USER-101" {
			t.Fatalf("foreign order in vendor listing: %+v", o)
		}
	}
}

func TestOrderRepository_SetStatus(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("PED-05001", "USER-101", time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.SetStatus(order.ID, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}

	if err := repo.SetStatus("PED-09999", domain.OrderStatusConfirmed); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

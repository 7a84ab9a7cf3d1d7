package domain

import (
	"errors"
	"testing"
	"time"
)

func validOrder() Order {
	now := time.Now().UTC()
	items := []OrderItem{
		{ID: "item-1", ProductID: "PROD-1001", Qty: 2, PriceMinor: 10000, CreatedAt: now},
		{ID: "item-2", ProductID: "PROD-1002", Qty: 1, PriceMinor: 5000, CreatedAt: now},
	}
	return Order{
		ID:         "PED-00001",
		Number:     "PED-202608-0001",
		Customer:   Customer{Name: "Maria Lopez", Email: "maria@example.com"},
		VendorID:   "USER-101",
		Items:      items,
		TotalMinor: ComputeTotal(items),
		Status:     OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItem{
		{Qty: 2, PriceMinor: 10000},
		{Qty: 1, PriceMinor: 5000},
	}
	if got := ComputeTotal(items); got != 25000 {
		t.Fatalf("expected total 25000, got %d", got)
	}
	if got := ComputeTotal(nil); got != 0 {
		t.Fatalf("expected empty total 0, got %d", got)
	}
}

func TestOrderValidateInvariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Order)
		wantErr error
	}{
		{
			name:   "valid order",
			mutate: func(o *Order) {},
		},
		{
			name:    "missing customer",
			mutate:  func(o *Order) { o.Customer.Name = "" },
			wantErr: ErrCustomerRequired,
		},
		{
			name:    "missing vendor",
			mutate:  func(o *Order) { o.VendorID = "" },
			wantErr: ErrVendorRequired,
		},
		{
			name:    "no items",
			mutate:  func(o *Order) { o.Items = nil; o.TotalMinor = 0 },
			wantErr: ErrItemsRequired,
		},
		{
			name:    "zero qty item",
			mutate:  func(o *Order) { o.Items[0].Qty = 0 },
			wantErr: ErrItemQtyInvalid,
		},
		{
			name:    "negative price item",
			mutate:  func(o *Order) { o.Items[0].PriceMinor = -1 },
			wantErr: ErrItemPriceInvalid,
		},
		{
			name:    "total mismatch",
			mutate:  func(o *Order) { o.TotalMinor += 1 },
			wantErr: ErrTotalMismatch,
		},
		{
			name:    "unknown status",
			mutate:  func(o *Order) { o.Status = "archived" },
			wantErr: ErrStatusInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)

			errs := order.ValidateInvariants()
			if tt.wantErr == nil {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}

			found := false
			for _, err := range errs {
				if errors.Is(err, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v in %v", tt.wantErr, errs)
			}
		})
	}
}

func TestStatusTokens(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusInProcess,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		if !IsKnownStatus(s) {
			t.Fatalf("expected %q to be known", s)
		}
	}
	if IsKnownStatus("not_a_status") {
		t.Fatal("expected unknown token to be rejected")
	}

	if !IsTerminalStatus(OrderStatusDelivered) || !IsTerminalStatus(OrderStatusCancelled) {
		t.Fatal("delivered and cancelled must be terminal")
	}
	if IsTerminalStatus(OrderStatusPending) {
		t.Fatal("pending must not be terminal")
	}
}

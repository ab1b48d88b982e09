package domain

import (
	"errors"
	"testing"
)

func mustNewItem(t *testing.T, quantity, threshold int) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem("SKU-001", "Bolt M8", quantity, threshold, 1, 1, "branch-1")
	if err != nil {
		t.Fatalf("NewInventoryItem failed: %v", err)
	}
	item.PullEvents()
	return item
}

func TestNewInventoryItem(t *testing.T) {
	tests := []struct {
		name        string
		sku         string
		itemName    string
		quantity    int
		threshold   int
		shelf       int
		section     int
		branchID    string
		expectError bool
	}{
		{"valid item", "SKU-001", "Bolt M8", 10, 2, 1, 1, "branch-1", false},
		{"zero quantity allowed", "SKU-001", "Bolt M8", 0, 2, 1, 1, "branch-1", false},
		{"empty sku", "", "Bolt M8", 10, 2, 1, 1, "branch-1", true},
		{"empty name", "SKU-001", "", 10, 2, 1, 1, "branch-1", true},
		{"negative quantity", "SKU-001", "Bolt M8", -1, 2, 1, 1, "branch-1", true},
		{"negative threshold", "SKU-001", "Bolt M8", 10, -1, 1, 1, "branch-1", true},
		{"zero shelf", "SKU-001", "Bolt M8", 10, 2, 0, 1, "branch-1", true},
		{"zero section", "SKU-001", "Bolt M8", 10, 2, 1, 0, "branch-1", true},
		{"empty branch", "SKU-001", "Bolt M8", 10, 2, 1, 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewInventoryItem(tt.sku, tt.itemName, tt.quantity, tt.threshold, tt.shelf, tt.section, tt.branchID)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.ID == "" {
				t.Error("expected generated item ID")
			}
		})
	}
}

func TestReceive(t *testing.T) {
	item := mustNewItem(t, 10, 2)

	if err := item.Receive(5); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if item.Quantity != 15 {
		t.Errorf("quantity = %d, want 15", item.Quantity)
	}

	if err := item.Receive(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Receive(0) error = %v, want ErrInvalidQuantity", err)
	}
	if err := item.Receive(-3); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Receive(-3) error = %v, want ErrInvalidQuantity", err)
	}
}

func TestDeduct(t *testing.T) {
	tests := []struct {
		name         string
		start        int
		deduct       int
		want         int
		insufficient bool
	}{
		{"normal deduction", 10, 4, 6, false},
		{"deduct to zero", 10, 10, 0, false},
		{"over available", 10, 11, 10, true},
		{"from empty", 0, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := mustNewItem(t, tt.start, 0)
			err := item.Deduct(tt.deduct)
			if tt.insufficient {
				var stockErr *InsufficientStockError
				if !errors.As(err, &stockErr) {
					t.Fatalf("expected InsufficientStockError, got %v", err)
				}
				if stockErr.Requested != tt.deduct || stockErr.Available != tt.start {
					t.Errorf("error detail = requested %d available %d, want %d/%d",
						stockErr.Requested, stockErr.Available, tt.deduct, tt.start)
				}
				if item.Quantity != tt.start {
					t.Errorf("quantity mutated on failure: %d", item.Quantity)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Quantity != tt.want {
				t.Errorf("quantity = %d, want %d", item.Quantity, tt.want)
			}
		})
	}
}

func TestDeductRaisesLowStockAlert(t *testing.T) {
	item := mustNewItem(t, 10, 5)

	if err := item.Deduct(6); err != nil {
		t.Fatalf("Deduct failed: %v", err)
	}

	events := item.PullEvents()
	var alert *LowStockAlertEvent
	for _, e := range events {
		if a, ok := e.(LowStockAlertEvent); ok {
			alert = &a
		}
	}
	if alert == nil {
		t.Fatal("expected LowStockAlertEvent after dropping to threshold")
	}
	if alert.Quantity != 4 || alert.MinThreshold != 5 {
		t.Errorf("alert = qty %d threshold %d, want 4/5", alert.Quantity, alert.MinThreshold)
	}

	if len(item.PullEvents()) != 0 {
		t.Error("PullEvents should clear the event list")
	}
}

func TestRevertReceive(t *testing.T) {
	item := mustNewItem(t, 10, 0)

	if err := item.RevertReceive(4); err != nil {
		t.Fatalf("RevertReceive failed: %v", err)
	}
	if item.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", item.Quantity)
	}

	// Stock consumed since the original receipt cannot be clawed back
	err := item.RevertReceive(7)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if item.Quantity != 6 {
		t.Errorf("quantity mutated on failed revert: %d", item.Quantity)
	}
}

func TestRevertDeduct(t *testing.T) {
	item := mustNewItem(t, 3, 0)

	if err := item.RevertDeduct(5); err != nil {
		t.Fatalf("RevertDeduct failed: %v", err)
	}
	if item.Quantity != 8 {
		t.Errorf("quantity = %d, want 8", item.Quantity)
	}
}

func TestSetQuantity(t *testing.T) {
	item := mustNewItem(t, 10, 0)

	if err := item.SetQuantity(3, "edit"); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", item.Quantity)
	}

	err := item.SetQuantity(-1, "edit")
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError for negative target, got %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("quantity mutated on failure: %d", item.Quantity)
	}
}

func TestRelocate(t *testing.T) {
	item := mustNewItem(t, 10, 0)

	if err := item.Relocate(3, 2, "branch-2"); err != nil {
		t.Fatalf("Relocate failed: %v", err)
	}
	if item.Shelf != 3 || item.Section != 2 || item.BranchID != "branch-2" {
		t.Errorf("relocation not applied: %+v", item)
	}
	if item.Placement() != "C-02" {
		t.Errorf("Placement() = %q, want C-02", item.Placement())
	}

	events := item.PullEvents()
	found := false
	for _, e := range events {
		if rel, ok := e.(ItemRelocatedEvent); ok {
			found = true
			if rel.FromBranchID != "branch-1" || rel.ToBranchID != "branch-2" {
				t.Errorf("relocation event = %+v", rel)
			}
		}
	}
	if !found {
		t.Error("expected ItemRelocatedEvent")
	}

	if err := item.Relocate(0, 1, ""); err == nil {
		t.Error("expected error for invalid placement")
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"ski-shop-inventory/internal/domain"
	"ski-shop-inventory/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newStockFixture(t *testing.T, productID string, quantity, reserved int) (StockService, repository.InventoryRepository) {
	t.Helper()
	repo := repository.NewMemoryInventoryRepository()
	err := repo.Put(context.Background(), &domain.Inventory{
		ProductID:        productID,
		Status:           domain.StatusInStock,
		Quantity:         quantity,
		ReservedQuantity: reserved,
	})
	if err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}
	return NewStockService(repo), repo
}

func mustGet(t *testing.T, repo repository.InventoryRepository, productID string) *domain.Inventory {
	t.Helper()
	inv, err := repo.FindByProductID(context.Background(), productID)
	if err != nil {
		t.Fatalf("failed to read inventory: %v", err)
	}
	return inv
}

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("holds units without touching quantity", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 0)

		if err := svc.Reserve(ctx, "p1", 4); err != nil {
			t.Fatalf("Reserve failed: %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.Quantity != 10 {
			t.Errorf("Quantity = %d, want 10", inv.Quantity)
		}
		if inv.ReservedQuantity != 4 {
			t.Errorf("ReservedQuantity = %d, want 4", inv.ReservedQuantity)
		}
		if inv.AvailableQuantity() != 6 {
			t.Errorf("AvailableQuantity = %d, want 6", inv.AvailableQuantity())
		}
	})

	t.Run("fails when available is insufficient", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 8)

		err := svc.Reserve(ctx, "p1", 3)
		if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.ReservedQuantity != 8 {
			t.Errorf("failed reserve mutated reservation: got %d, want 8", inv.ReservedQuantity)
		}
	})

	t.Run("fails for unknown product", func(t *testing.T) {
		svc, _ := newStockFixture(t, "p1", 10, 0)

		err := svc.Reserve(ctx, "missing", 1)
		if !errors.Is(err, repository.ErrInventoryNotFound) {
			t.Fatalf("expected ErrInventoryNotFound, got %v", err)
		}
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("returns held units to available", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 5)

		if err := svc.Release(ctx, "p1", 3); err != nil {
			t.Fatalf("Release failed: %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.ReservedQuantity != 2 {
			t.Errorf("ReservedQuantity = %d, want 2", inv.ReservedQuantity)
		}
		if inv.Quantity != 10 {
			t.Errorf("Quantity = %d, want 10", inv.Quantity)
		}
	})

	t.Run("clamps reservation at zero when over-releasing", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 2)

		if err := svc.Release(ctx, "p1", 99); err != nil {
			t.Fatalf("over-release should succeed, got %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.ReservedQuantity != 0 {
			t.Errorf("ReservedQuantity = %d, want 0", inv.ReservedQuantity)
		}
	})

	t.Run("fails for unknown product", func(t *testing.T) {
		svc, _ := newStockFixture(t, "p1", 10, 0)

		err := svc.Release(ctx, "missing", 1)
		if !errors.Is(err, repository.ErrInventoryNotFound) {
			t.Fatalf("expected ErrInventoryNotFound, got %v", err)
		}
	})
}

func TestStockIn(t *testing.T) {
	ctx := context.Background()

	t.Run("adds on-hand stock", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 3)

		if err := svc.StockIn(ctx, "p1", 5); err != nil {
			t.Fatalf("StockIn failed: %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.Quantity != 15 {
			t.Errorf("Quantity = %d, want 15", inv.Quantity)
		}
		if inv.ReservedQuantity != 3 {
			t.Errorf("ReservedQuantity = %d, want 3", inv.ReservedQuantity)
		}
	})

	t.Run("creates a record for unknown product", func(t *testing.T) {
		repo := repository.NewMemoryInventoryRepository()
		svc := NewStockService(repo)

		if err := svc.StockIn(ctx, "fresh", 7); err != nil {
			t.Fatalf("StockIn on unknown product should create a record, got %v", err)
		}

		inv := mustGet(t, repo, "fresh")
		if inv.Quantity != 7 {
			t.Errorf("Quantity = %d, want 7", inv.Quantity)
		}
		if inv.ReservedQuantity != 0 {
			t.Errorf("ReservedQuantity = %d, want 0", inv.ReservedQuantity)
		}
		if inv.Status != domain.StatusInStock {
			t.Errorf("Status = %q, want %q", inv.Status, domain.StatusInStock)
		}
	})
}

func TestStockOut(t *testing.T) {
	ctx := context.Background()

	t.Run("removes on-hand stock leaving reservations intact", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 3)

		if err := svc.StockOut(ctx, "p1", 5); err != nil {
			t.Fatalf("StockOut failed: %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.Quantity != 5 {
			t.Errorf("Quantity = %d, want 5", inv.Quantity)
		}
		if inv.ReservedQuantity != 3 {
			t.Errorf("ReservedQuantity = %d, want 3", inv.ReservedQuantity)
		}
	})

	t.Run("fails when available is insufficient", func(t *testing.T) {
		svc, repo := newStockFixture(t, "p1", 10, 8)

		err := svc.StockOut(ctx, "p1", 3)
		if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		inv := mustGet(t, repo, "p1")
		if inv.Quantity != 10 {
			t.Errorf("failed stock-out mutated quantity: got %d, want 10", inv.Quantity)
		}
	})

	t.Run("fails for unknown product", func(t *testing.T) {
		svc, _ := newStockFixture(t, "p1", 10, 0)

		err := svc.StockOut(ctx, "missing", 1)
		if !errors.Is(err, repository.ErrInventoryNotFound) {
			t.Fatalf("expected ErrInventoryNotFound, got %v", err)
		}
	})
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryInventoryRepository()
	svc := NewStockService(repo)

	seed := []*domain.Inventory{
		{ProductID: "empty", Quantity: 0},
		{ProductID: "low", Quantity: 8, ReservedQuantity: 5},
		{ProductID: "edge", Quantity: 5},
		{ProductID: "plenty", Quantity: 50},
	}
	for _, inv := range seed {
		inv.Status = domain.StatusInStock
		if err := repo.Put(ctx, inv); err != nil {
			t.Fatalf("failed to seed inventory: %v", err)
		}
	}

	low, err := svc.LowStock(ctx, 5)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}

	got := map[string]bool{}
	for _, inv := range low {
		got[inv.ProductID] = true
	}
	for _, want := range []string{"empty", "low", "edge"} {
		if !got[want] {
			t.Errorf("expected %q in low stock results", want)
		}
	}
	if got["plenty"] {
		t.Error("product above threshold should not be reported")
	}
}

// Exercises the reserve -> release -> stock-out -> stock-in flow end to end.
func TestStockLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, repo := newStockFixture(t, "ski-101", 15, 0)

	if err := svc.Reserve(ctx, "ski-101", 2); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if avail := mustGet(t, repo, "ski-101").AvailableQuantity(); avail != 13 {
		t.Fatalf("available after reserve = %d, want 13", avail)
	}

	if err := svc.Release(ctx, "ski-101", 1); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if avail := mustGet(t, repo, "ski-101").AvailableQuantity(); avail != 14 {
		t.Fatalf("available after release = %d, want 14", avail)
	}

	if err := svc.StockOut(ctx, "ski-101", 999); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("oversized stock-out should fail, got %v", err)
	}

	if err := svc.StockIn(ctx, "ski-101", 10); err != nil {
		t.Fatalf("StockIn failed: %v", err)
	}
	if avail := mustGet(t, repo, "ski-101").AvailableQuantity(); avail != 24 {
		t.Fatalf("available after stock-in = %d, want 24", avail)
	}
}

func TestProperty_AvailableQuantityInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("available equals quantity minus reserved floored at zero after any operation sequence", prop.ForAll(
		func(initial int, ops []int, qtys []int) bool {
			ctx := context.Background()
			repo := repository.NewMemoryInventoryRepository()
			svc := NewStockService(repo)

			err := repo.Put(ctx, &domain.Inventory{
				ProductID: "p1",
				Status:    domain.StatusInStock,
				Quantity:  initial,
			})
			if err != nil {
				t.Logf("FAIL: failed to seed inventory: %v", err)
				return false
			}

			n := len(ops)
			if len(qtys) < n {
				n = len(qtys)
			}
			for i := 0; i < n; i++ {
				qty := qtys[i]
				switch ops[i] % 4 {
				case 0:
					_ = svc.Reserve(ctx, "p1", qty)
				case 1:
					_ = svc.Release(ctx, "p1", qty)
				case 2:
					_ = svc.StockIn(ctx, "p1", qty)
				case 3:
					_ = svc.StockOut(ctx, "p1", qty)
				}

				inv, err := repo.FindByProductID(ctx, "p1")
				if err != nil {
					t.Logf("FAIL: failed to read inventory: %v", err)
					return false
				}
				want := inv.Quantity - inv.ReservedQuantity
				if want < 0 {
					want = 0
				}
				if inv.AvailableQuantity() != want {
					t.Logf("FAIL: available = %d, want %d (q=%d r=%d)", inv.AvailableQuantity(), want, inv.Quantity, inv.ReservedQuantity)
					return false
				}
				if inv.Quantity < 0 || inv.ReservedQuantity < 0 {
					t.Logf("FAIL: negative counts q=%d r=%d", inv.Quantity, inv.ReservedQuantity)
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),                      // initial quantity
		gen.SliceOf(gen.IntRange(0, 3)),           // operation codes
		gen.SliceOf(gen.IntRange(1, 30)),          // operation quantities
	))

	properties.Property("reserve then release of the same quantity restores available", prop.ForAll(
		func(initial, qty int) bool {
			if qty > initial {
				return true // reserve would be rejected, nothing to check
			}
			ctx := context.Background()
			repo := repository.NewMemoryInventoryRepository()
			svc := NewStockService(repo)

			err := repo.Put(ctx, &domain.Inventory{
				ProductID: "p1",
				Status:    domain.StatusInStock,
				Quantity:  initial,
			})
			if err != nil {
				t.Logf("FAIL: failed to seed inventory: %v", err)
				return false
			}

			if err := svc.Reserve(ctx, "p1", qty); err != nil {
				t.Logf("FAIL: Reserve failed: %v", err)
				return false
			}
			if err := svc.Release(ctx, "p1", qty); err != nil {
				t.Logf("FAIL: Release failed: %v", err)
				return false
			}

			inv, err := repo.FindByProductID(ctx, "p1")
			if err != nil {
				t.Logf("FAIL: failed to read inventory: %v", err)
				return false
			}
			if inv.AvailableQuantity() != initial {
				t.Logf("FAIL: available = %d, want %d", inv.AvailableQuantity(), initial)
				return false
			}
			return true
		},
		gen.IntRange(1, 100), // initial quantity
		gen.IntRange(1, 100), // reserved quantity
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

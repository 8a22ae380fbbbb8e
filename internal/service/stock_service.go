package service

import (
	"context"
	"errors"
	"sync"

	"ski-shop-inventory/internal/domain"
	"ski-shop-inventory/internal/repository"
)

var (
	// ErrInsufficientStock is returned when a reserve or stock-out asks for
	// more than the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockService is the stock ledger: it validates and applies stock
// transitions against the authoritative inventory records.
//
// Quantity is the physical on-hand count; ReservedQuantity is a soft hold.
// Reservations prevent overselling during checkout-style flows without
// touching physical stock until fulfillment (stock-out) happens. Release and
// stock-out floor at zero instead of rejecting, which means available can
// transiently diverge from quantity-minus-reserved; a stricter ledger would
// reject operations violating reserved <= quantity.
//
// Every operation validates before mutating: a failed call leaves the store
// exactly as it was.
type StockService interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
	StockIn(ctx context.Context, productID string, qty int) error
	StockOut(ctx context.Context, productID string, qty int) error
	Get(ctx context.Context, productID string) (*domain.Inventory, error)
	Status(ctx context.Context, productID string) (*domain.StockStatus, error)
	BatchStatus(ctx context.Context, productIDs []string) (map[string]*domain.Inventory, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.Inventory, error)
}

// stockService serializes mutations per product id with a keyed mutex so the
// check-then-act sequences (availability check, then write) are atomic per
// product within this process. A multi-process deployment on the SQL backend
// would additionally need row-level guards (SELECT ... FOR UPDATE).
type stockService struct {
	inventoryRepo repository.InventoryRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStockService creates a new instance of StockService
func NewStockService(inventoryRepo repository.InventoryRepository) StockService {
	return &stockService{
		inventoryRepo: inventoryRepo,
		locks:         make(map[string]*sync.Mutex),
	}
}

func (s *stockService) lockFor(productID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[productID] = lock
	}
	return lock
}

// Reserve places a soft hold of qty units against available stock. It fails
// with repository.ErrInventoryNotFound when no record exists and with
// ErrInsufficientStock when available < qty. Quantity is not touched.
func (s *stockService) Reserve(ctx context.Context, productID string, qty int) error {
	lock := s.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	inventory, err := s.inventoryRepo.FindByProductID(ctx, productID)
	if err != nil {
		return err
	}

	if !inventory.CanReserve(qty) {
		return ErrInsufficientStock
	}

	inventory.ReservedQuantity += qty
	return s.inventoryRepo.Put(ctx, inventory)
}

// Release removes up to qty units of reservation. Releasing more than is
// reserved clamps the reservation at zero; that is not an error.
func (s *stockService) Release(ctx context.Context, productID string, qty int) error {
	lock := s.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	inventory, err := s.inventoryRepo.FindByProductID(ctx, productID)
	if err != nil {
		return err
	}

	inventory.ReservedQuantity -= qty
	if inventory.ReservedQuantity < 0 {
		inventory.ReservedQuantity = 0
	}
	return s.inventoryRepo.Put(ctx, inventory)
}

// StockIn adds qty units of on-hand stock. When no record exists yet it
// creates one with quantity=qty and no reservations. StockIn never fails.
func (s *stockService) StockIn(ctx context.Context, productID string, qty int) error {
	lock := s.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	inventory, err := s.inventoryRepo.FindByProductID(ctx, productID)
	if err != nil {
		if !errors.Is(err, repository.ErrInventoryNotFound) {
			return err
		}
		inventory = &domain.Inventory{
			ProductID: productID,
			Status:    domain.StatusInStock,
		}
	}

	inventory.Quantity += qty
	return s.inventoryRepo.Put(ctx, inventory)
}

// StockOut removes qty units of on-hand stock, leaving reservations
// untouched. It fails with repository.ErrInventoryNotFound when no record
// exists and with ErrInsufficientStock when available < qty. The resulting
// quantity is floored at zero.
func (s *stockService) StockOut(ctx context.Context, productID string, qty int) error {
	lock := s.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	inventory, err := s.inventoryRepo.FindByProductID(ctx, productID)
	if err != nil {
		return err
	}

	if inventory.AvailableQuantity() < qty {
		return ErrInsufficientStock
	}

	inventory.Quantity -= qty
	if inventory.Quantity < 0 {
		inventory.Quantity = 0
	}
	return s.inventoryRepo.Put(ctx, inventory)
}

// Get returns the authoritative inventory record for a product
func (s *stockService) Get(ctx context.Context, productID string) (*domain.Inventory, error) {
	return s.inventoryRepo.FindByProductID(ctx, productID)
}

// Status returns a computed snapshot of the product's stock
func (s *stockService) Status(ctx context.Context, productID string) (*domain.StockStatus, error) {
	inventory, err := s.inventoryRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return domain.NewStockStatus(inventory), nil
}

// BatchStatus returns the records matching the given ids. Ids without a
// record are omitted, not reported as errors.
func (s *stockService) BatchStatus(ctx context.Context, productIDs []string) (map[string]*domain.Inventory, error) {
	return s.inventoryRepo.FindByProductIDs(ctx, productIDs)
}

// LowStock returns all records whose available quantity is at or below the
// threshold
func (s *stockService) LowStock(ctx context.Context, threshold int) ([]*domain.Inventory, error) {
	inventories, err := s.inventoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	low := []*domain.Inventory{}
	for _, inventory := range inventories {
		if inventory.AvailableQuantity() <= threshold {
			low = append(low, inventory)
		}
	}
	return low, nil
}

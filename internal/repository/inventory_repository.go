package repository

import (
	"context"
	"errors"
	"sync"

	"ski-shop-inventory/internal/domain"
)

var (
	ErrInventoryNotFound = errors.New("inventory not found")
)

// InventoryRepository defines the interface for authoritative inventory
// records, keyed by product id. Put has upsert semantics; the repository
// holds no stock logic beyond storage.
type InventoryRepository interface {
	Put(ctx context.Context, inventory *domain.Inventory) error
	FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error)
	FindByProductIDs(ctx context.Context, productIDs []string) (map[string]*domain.Inventory, error)
	List(ctx context.Context) ([]*domain.Inventory, error)
}

type memoryInventoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Inventory
	order []string
}

// NewMemoryInventoryRepository creates an in-memory InventoryRepository
func NewMemoryInventoryRepository() InventoryRepository {
	return &memoryInventoryRepository{items: make(map[string]domain.Inventory)}
}

// Put creates or replaces the inventory record for a product
func (r *memoryInventoryRepository) Put(ctx context.Context, inventory *domain.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[inventory.ProductID]; !exists {
		r.order = append(r.order, inventory.ProductID)
	}
	r.items[inventory.ProductID] = *inventory
	return nil
}

// FindByProductID retrieves the inventory record for a product
func (r *memoryInventoryRepository) FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inventory, exists := r.items[productID]
	if !exists {
		return nil, ErrInventoryNotFound
	}
	return &inventory, nil
}

// FindByProductIDs retrieves the subset of records matching the given ids.
// Ids without a record are silently omitted from the result.
func (r *memoryInventoryRepository) FindByProductIDs(ctx context.Context, productIDs []string) (map[string]*domain.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*domain.Inventory, len(productIDs))
	for _, id := range productIDs {
		if inventory, exists := r.items[id]; exists {
			result[id] = &inventory
		}
	}
	return result, nil
}

// List retrieves all inventory records in insertion order
func (r *memoryInventoryRepository) List(ctx context.Context) ([]*domain.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inventories := make([]*domain.Inventory, 0, len(r.order))
	for _, id := range r.order {
		inventory := r.items[id]
		inventories = append(inventories, &inventory)
	}
	return inventories, nil
}

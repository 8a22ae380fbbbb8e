package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"ski-shop-inventory/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access.
//
// SKU uniqueness is not enforced: FindBySKU returns the first match in
// insertion order.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	List(ctx context.Context, page, size int, sortBy string, sortOrder SortOrder) ([]*domain.Product, error)
	Search(ctx context.Context, keyword string, page, size int) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string, page, size int) ([]*domain.Product, error)
}

type memoryProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
	order []string
}

// NewMemoryProductRepository creates an in-memory ProductRepository
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{items: make(map[string]domain.Product)}
}

// Create stores a new product
func (r *memoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.items[product.ID] = *product
	return nil
}

// FindByID retrieves a product by ID
func (r *memoryProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.items[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// FindBySKU retrieves the first product with the given SKU
func (r *memoryProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		product := r.items[id]
		if product.SKU == sku {
			return &product, nil
		}
	}
	return nil, ErrProductNotFound
}

// FindByIDs retrieves the products whose ids appear in the given set.
// Missing ids are silently omitted.
func (r *memoryProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := []*domain.Product{}
	for _, id := range r.order {
		if _, ok := wanted[id]; !ok {
			continue
		}
		product := r.items[id]
		products = append(products, &product)
	}
	return products, nil
}

// List retrieves products sorted by the named field with offset pagination.
// Unknown sort fields fall back to name ascending.
func (r *memoryProductRepository) List(ctx context.Context, page, size int, sortBy string, sortOrder SortOrder) ([]*domain.Product, error) {
	r.mu.RLock()
	products := r.snapshot()
	r.mu.RUnlock()

	sortProducts(products, sortBy, sortOrder)
	return paginate(products, page, size), nil
}

// Search retrieves products whose name or description contains the keyword,
// case-insensitively, in insertion order.
func (r *memoryProductRepository) Search(ctx context.Context, keyword string, page, size int) ([]*domain.Product, error) {
	needle := strings.ToLower(keyword)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*domain.Product{}
	for _, id := range r.order {
		product := r.items[id]
		if strings.Contains(strings.ToLower(product.Name), needle) ||
			strings.Contains(strings.ToLower(product.Description), needle) {
			matched = append(matched, &product)
		}
	}
	return paginate(matched, page, size), nil
}

// ListByCategory retrieves products whose embedded category snapshot has the
// given id. This reflects the snapshot taken at product creation, not the
// live category record.
func (r *memoryProductRepository) ListByCategory(ctx context.Context, categoryID string, page, size int) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*domain.Product{}
	for _, id := range r.order {
		product := r.items[id]
		if product.Category != nil && product.Category.ID == categoryID {
			matched = append(matched, &product)
		}
	}
	return paginate(matched, page, size), nil
}

// snapshot copies all products in insertion order. Callers must hold mu.
func (r *memoryProductRepository) snapshot() []*domain.Product {
	products := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		product := r.items[id]
		products = append(products, &product)
	}
	return products
}

func sortProducts(products []*domain.Product, sortBy string, sortOrder SortOrder) {
	desc := sortOrder == SortOrderDesc

	var less func(a, b *domain.Product) bool
	switch sortBy {
	case "name":
		less = func(a, b *domain.Product) bool { return a.Name < b.Name }
	case "sku":
		less = func(a, b *domain.Product) bool { return a.SKU < b.SKU }
	case "brand":
		less = func(a, b *domain.Product) bool { return a.Brand < b.Brand }
	case "createdAt", "created_at":
		less = func(a, b *domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "price":
		less = func(a, b *domain.Product) bool { return productPrice(a) < productPrice(b) }
	default:
		// Unknown field: name ascending, direction ignored.
		less = func(a, b *domain.Product) bool { return a.Name < b.Name }
		desc = false
	}

	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func productPrice(p *domain.Product) float64 {
	if p.Price == nil {
		return 0
	}
	return p.Price.CurrentPrice
}

package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ski-shop-inventory/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, search string, page, size int) ([]*domain.Category, error)
}

// memoryCategoryRepository stores categories in an insertion-ordered map.
// Reads hand out copies so callers never alias the stored record.
type memoryCategoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Category
	order []string
}

// NewMemoryCategoryRepository creates an in-memory CategoryRepository
func NewMemoryCategoryRepository() CategoryRepository {
	return &memoryCategoryRepository{items: make(map[string]domain.Category)}
}

// Create stores a new category
func (r *memoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[category.ID]; !exists {
		r.order = append(r.order, category.ID)
	}
	r.items[category.ID] = *category
	return nil
}

// FindByID retrieves a category by ID
func (r *memoryCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.items[id]
	if !exists {
		return nil, ErrCategoryNotFound
	}
	return &category, nil
}

// List retrieves categories in insertion order with an optional
// case-insensitive name filter and offset pagination.
func (r *memoryCategoryRepository) List(ctx context.Context, search string, page, size int) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Category, 0, len(r.order))
	needle := strings.ToLower(search)
	for _, id := range r.order {
		category := r.items[id]
		if needle != "" && !strings.Contains(strings.ToLower(category.Name), needle) {
			continue
		}
		matched = append(matched, &category)
	}

	return paginate(matched, page, size), nil
}

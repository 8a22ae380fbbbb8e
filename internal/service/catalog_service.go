package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ski-shop-inventory/internal/domain"
	"ski-shop-inventory/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrCategoryNotFound is returned when a product references a category
	// id that cannot be resolved.
	ErrCategoryNotFound = errors.New("invalid categoryId")
)

// DefaultCurrencyCode is used when a product is created without one.
const DefaultCurrencyCode = "JPY"

// CreateCategoryInput carries the fields for a new category.
type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *string
}

// CreateProductInput carries the fields for a new product and its initial
// inventory.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	Brand       string
	Attributes  map[string]any
	Tags        []string
	CategoryID  string
	Price       PriceInput
	Inventory   InventoryInput
}

// PriceInput carries pricing fields for product creation.
type PriceInput struct {
	RegularPrice  float64
	SalePrice     *float64
	CurrencyCode  string
	SaleStartDate *time.Time
	SaleEndDate   *time.Time
}

// InventoryInput carries the initial stock for product creation.
type InventoryInput struct {
	Quantity     int
	LocationCode string
}

// CatalogService creates categories and products. A new product is always
// written together with its authoritative inventory record (same id, zero
// reservations); the pair is one logical unit and must stay transactional if
// a persistent backend is introduced.
type CatalogService interface {
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context, search string, page, size int) ([]*domain.Category, error)

	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	ListProducts(ctx context.Context, page, size int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, keyword string, page, size int) ([]*domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string, page, size int) ([]*domain.Product, error)
}

type catalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
) CatalogService {
	return &catalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
	}
}

// CreateCategory creates a category with an opaque unique id. Level and Path
// are set as for a root category regardless of ParentID; nested paths are
// not built. Name uniqueness is not checked.
func (s *catalogService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*domain.Category, error) {
	now := time.Now()
	category := &domain.Category{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Description:  in.Description,
		ParentID:     in.ParentID,
		Level:        1,
		Path:         "/" + in.Name,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		ProductCount: 0,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// GetCategory retrieves a category by id
func (s *catalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// ListCategories lists categories with an optional name filter
func (s *catalogService) ListCategories(ctx context.Context, search string, page, size int) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx, search, page, size)
}

// CreateProduct resolves the category, then creates the product and its
// paired inventory record. When the category id cannot be resolved it fails
// with ErrCategoryNotFound before anything is written.
func (s *catalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	category, err := s.categoryRepo.FindByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	currency := in.Price.CurrencyCode
	if currency == "" {
		currency = DefaultCurrencyCode
	}

	status := domain.StatusOutOfStock
	if in.Inventory.Quantity > 0 {
		status = domain.StatusInStock
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Brand:       in.Brand,
		Attributes:  in.Attributes,
		Tags:        in.Tags,
		Category:    category,
		Price: domain.NewPriceInfo(
			in.Price.RegularPrice,
			in.Price.SalePrice,
			currency,
			in.Price.SaleStartDate,
			in.Price.SaleEndDate,
		),
		Inventory: &domain.InventoryInfo{
			Status:            status,
			Quantity:          in.Inventory.Quantity,
			AvailableQuantity: in.Inventory.Quantity,
			ReservedQuantity:  0,
			LocationCode:      in.Inventory.LocationCode,
		},
		Images:    []domain.ProductImage{},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	inventory := &domain.Inventory{
		ProductID:        product.ID,
		Status:           status,
		Quantity:         in.Inventory.Quantity,
		ReservedQuantity: 0,
		LocationCode:     in.Inventory.LocationCode,
	}
	if err := s.inventoryRepo.Put(ctx, inventory); err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	return product, nil
}

// GetProduct retrieves a product by id
func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// GetProductBySKU retrieves the first product with the given SKU
func (s *catalogService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.productRepo.FindBySKU(ctx, sku)
}

// GetProductsByIDs retrieves the products matching the given id set
func (s *catalogService) GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	return s.productRepo.FindByIDs(ctx, ids)
}

// ListProducts lists products with sorting and pagination
func (s *catalogService) ListProducts(ctx context.Context, page, size int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, page, size, sortBy, sortOrder)
}

// SearchProducts searches product names and descriptions
func (s *catalogService) SearchProducts(ctx context.Context, keyword string, page, size int) ([]*domain.Product, error) {
	return s.productRepo.Search(ctx, keyword, page, size)
}

// ListProductsByCategory lists products by embedded category snapshot id
func (s *catalogService) ListProductsByCategory(ctx context.Context, categoryID string, page, size int) ([]*domain.Product, error) {
	return s.productRepo.ListByCategory(ctx, categoryID, page, size)
}

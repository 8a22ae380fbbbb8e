package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ski-shop-inventory/internal/middleware"
	"ski-shop-inventory/internal/repository"
	"ski-shop-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	SKU         string                  `json:"sku" validate:"required,max=50"`
	Name        string                  `json:"name" validate:"required,max=200"`
	Description string                  `json:"description" validate:"max=1000"`
	Brand       string                  `json:"brand" validate:"max=100"`
	Attributes  map[string]any          `json:"attributes"`
	Tags        []string                `json:"tags"`
	CategoryID  string                  `json:"categoryId" validate:"required"`
	Price       ProductPriceRequest     `json:"price" validate:"required"`
	Inventory   ProductInventoryRequest `json:"inventory" validate:"required"`
}

// ProductPriceRequest represents the pricing section of a product creation
type ProductPriceRequest struct {
	RegularPrice  float64    `json:"regularPrice" validate:"required,gt=0"`
	SalePrice     *float64   `json:"salePrice" validate:"omitempty,gt=0"`
	CurrencyCode  string     `json:"currencyCode" validate:"omitempty,len=3"`
	SaleStartDate *time.Time `json:"saleStartDate"`
	SaleEndDate   *time.Time `json:"saleEndDate"`
}

// ProductInventoryRequest represents the initial stock section of a product
// creation
type ProductInventoryRequest struct {
	Quantity     int    `json:"quantity" validate:"gte=0"`
	LocationCode string `json:"locationCode" validate:"required,max=20"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)
		r.Post("/batch", h.Batch)
		r.Get("/sku/{sku}", h.GetBySKU)
		r.Get("/category/{categoryId}", h.ListByCategory)
		r.Get("/{id}", h.Get)
	})
}

// List handles product listing with sorting and pagination
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageAndSize(r)

	sortBy := r.URL.Query().Get("sortBy")
	if sortBy == "" {
		sortBy = "name"
	}

	sortOrder := repository.SortOrderAsc
	if strings.EqualFold(r.URL.Query().Get("sortDir"), "desc") {
		sortOrder = repository.SortOrderDesc
	}

	products, err := h.catalog.ListProducts(r.Context(), page, size, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Search handles keyword search over product names and descriptions
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, size := pageAndSize(r)
	keyword := r.URL.Query().Get("keyword")

	products, err := h.catalog.SearchProducts(r.Context(), keyword, page, size)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err), zap.String("keyword", keyword))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles fetching a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err), zap.String("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetBySKU handles fetching the first product with a given SKU
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	product, err := h.catalog.GetProductBySKU(r.Context(), sku)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product by SKU", zap.Error(err), zap.String("sku", sku))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListByCategory handles listing products by embedded category id
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	page, size := pageAndSize(r)
	categoryID := chi.URLParam(r, "categoryId")

	products, err := h.catalog.ListProductsByCategory(r.Context(), categoryID, page, size)
	if err != nil {
		h.logger.Error("Failed to list products by category", zap.Error(err), zap.String("category_id", categoryID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Batch handles fetching products by an id list. Ids without a product are
// omitted from the result.
func (h *ProductHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	products, err := h.catalog.GetProductsByIDs(r.Context(), ids)
	if err != nil {
		h.logger.Error("Failed to batch get products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondRequestError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.CreateProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Attributes:  req.Attributes,
		Tags:        req.Tags,
		CategoryID:  req.CategoryID,
		Price: service.PriceInput{
			RegularPrice:  req.Price.RegularPrice,
			SalePrice:     req.Price.SalePrice,
			CurrencyCode:  req.Price.CurrencyCode,
			SaleStartDate: req.Price.SaleStartDate,
			SaleEndDate:   req.Price.SaleEndDate,
		},
		Inventory: service.InventoryInput{
			Quantity:     req.Inventory.Quantity,
			LocationCode: req.Inventory.LocationCode,
		},
	})
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

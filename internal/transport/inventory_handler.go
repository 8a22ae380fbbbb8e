package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ski-shop-inventory/internal/middleware"
	"ski-shop-inventory/internal/repository"
	"ski-shop-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StockQuantityRequest represents a stock mutation payload
type StockQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// MessageResponse represents the acknowledgement body of a stock mutation
type MessageResponse struct {
	Message string `json:"message"`
}

// InventoryHandler handles HTTP requests for stock ledger operations
type InventoryHandler struct {
	stock  service.StockService
	logger *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock service.StockService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{stock: stock, logger: logger}
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/low-stock", h.LowStock)
		r.Post("/batch", h.Batch)
		r.Post("/reserve", h.Reserve)
		r.Post("/release", h.Release)
		r.Post("/stock-in", h.StockIn)
		r.Post("/stock-out", h.StockOut)
		r.Get("/status/{productId}", h.Status)
		r.Get("/{productId}", h.Get)
	})
}

// Get handles fetching the authoritative inventory record for a product
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	inventory, err := h.stock.Get(r.Context(), productID)
	if err != nil {
		h.respondStockError(w, err, productID)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inventory)
}

// Status handles fetching the computed stock status for a product
func (h *InventoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	status, err := h.stock.Status(r.Context(), productID)
	if err != nil {
		h.respondStockError(w, err, productID)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, status)
}

// Batch handles fetching inventory records for an id list. Ids without a
// record are omitted from the result map.
func (h *InventoryHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	records, err := h.stock.BatchStatus(r.Context(), ids)
	if err != nil {
		h.logger.Error("Failed to batch get inventory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get inventory")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

// Reserve handles placing a soft hold on available stock
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Stock reservation completed", h.stock.Reserve)
}

// Release handles releasing a previous reservation
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Stock reservation released", h.stock.Release)
}

// StockIn handles adding on-hand stock
func (h *InventoryHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Stock in process completed", h.stock.StockIn)
}

// StockOut handles removing on-hand stock
func (h *InventoryHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Stock out process completed", h.stock.StockOut)
}

// LowStock handles listing records at or below the availability threshold
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := queryInt(r, "threshold", 5)
	if threshold < 0 {
		threshold = 0
	}

	records, err := h.stock.LowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("Failed to list low stock", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list low stock")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

type stockOp func(ctx context.Context, productID string, qty int) error

func (h *InventoryHandler) mutate(w http.ResponseWriter, r *http.Request, message string, op stockOp) {
	var req StockQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondRequestError(w, err)
		return
	}

	if err := op(r.Context(), req.ProductID, req.Quantity); err != nil {
		h.respondStockError(w, err, req.ProductID)
		return
	}

	h.logger.Info("Stock operation applied",
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
		zap.String("result", message),
	)
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func (h *InventoryHandler) respondStockError(w http.ResponseWriter, err error, productID string) {
	switch {
	case errors.Is(err, repository.ErrInventoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Inventory not found")
	case errors.Is(err, service.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Stock operation failed", zap.Error(err), zap.String("product_id", productID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "inventory operation failed")
	}
}

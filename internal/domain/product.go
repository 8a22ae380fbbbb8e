package domain

import (
	"strings"
	"time"
)

// Product represents a product in the catalog.
//
// Category and Inventory are snapshots taken at creation time. They are
// embedded by value and never re-synced: later changes to the category or to
// the authoritative inventory record do not propagate here.
type Product struct {
	ID          string         `json:"id"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Brand       string         `json:"brand,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Category    *Category      `json:"category,omitempty"`
	Price       *PriceInfo     `json:"price,omitempty"`
	Inventory   *InventoryInfo `json:"inventory,omitempty"`
	Images      []ProductImage `json:"images"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// IsActive reports whether the product is active.
func (p *Product) IsActive() bool {
	return p.Active
}

// IsOnSale reports whether the product has a sale price attached.
func (p *Product) IsOnSale() bool {
	return p.Price != nil && p.Price.OnSale
}

// HasStock reports whether the creation-time inventory snapshot had
// available stock.
func (p *Product) HasStock() bool {
	return p.Inventory != nil && p.Inventory.AvailableQuantity > 0
}

// ProductImage represents an image attached to a product.
type ProductImage struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Type         string    `json:"type"`
	SortOrder    int       `json:"sortOrder"`
	AltText      string    `json:"altText,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsMainImage reports whether this is the product's main image.
func (i *ProductImage) IsMainImage() bool {
	return strings.EqualFold(i.Type, "main")
}

// PriceInfo holds product pricing.
//
// CurrentPrice is derived once when the PriceInfo is built and stored, not
// recomputed from the sale window on read. A product whose sale window has
// lapsed keeps the stale sale price until the price is rebuilt.
type PriceInfo struct {
	RegularPrice  float64    `json:"regularPrice"`
	SalePrice     *float64   `json:"salePrice,omitempty"`
	CurrentPrice  float64    `json:"currentPrice"`
	CurrencyCode  string     `json:"currencyCode"`
	OnSale        bool       `json:"onSale"`
	SaleStartDate *time.Time `json:"saleStartDate,omitempty"`
	SaleEndDate   *time.Time `json:"saleEndDate,omitempty"`
}

// NewPriceInfo builds a PriceInfo, deriving OnSale from the presence of a
// sale price and CurrentPrice from the sale state.
func NewPriceInfo(regular float64, sale *float64, currency string, start, end *time.Time) *PriceInfo {
	p := &PriceInfo{
		RegularPrice:  regular,
		SalePrice:     sale,
		CurrencyCode:  currency,
		OnSale:        sale != nil,
		SaleStartDate: start,
		SaleEndDate:   end,
	}
	p.CurrentPrice = regular
	if p.OnSale {
		p.CurrentPrice = *sale
	}
	return p
}

// IsValidSalePeriod reports whether the product is on sale and now falls
// within the sale window. Nil bounds are treated as unbounded.
func (p *PriceInfo) IsValidSalePeriod() bool {
	if !p.OnSale {
		return false
	}
	now := time.Now()
	if p.SaleStartDate != nil && now.Before(*p.SaleStartDate) {
		return false
	}
	if p.SaleEndDate != nil && now.After(*p.SaleEndDate) {
		return false
	}
	return true
}

// InventoryInfo is the denormalized stock snapshot embedded in a Product at
// creation time. The authoritative record is the Inventory aggregate.
type InventoryInfo struct {
	Status            string `json:"status"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	ReservedQuantity  int    `json:"reservedQuantity"`
	LocationCode      string `json:"locationCode,omitempty"`
}

// StockStatusLabel maps an available quantity to its display label.
func StockStatusLabel(available int) string {
	switch {
	case available <= 0:
		return "Out of Stock"
	case available <= 5:
		return "Low Stock"
	case available <= 10:
		return "Limited Stock"
	default:
		return "In Stock"
	}
}

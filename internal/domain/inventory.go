package domain

// Inventory status values.
const (
	StatusInStock    = "IN_STOCK"
	StatusOutOfStock = "OUT_OF_STOCK"
)

// Inventory is the authoritative stock record for a product, keyed by
// ProductID. Quantity is the physical on-hand count; ReservedQuantity is a
// soft hold that does not reduce on-hand stock until fulfilled by a
// stock-out.
type Inventory struct {
	ProductID        string `json:"productId"`
	Status           string `json:"status"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reservedQuantity"`
	LocationCode     string `json:"locationCode,omitempty"`
}

// AvailableQuantity returns on-hand minus reserved, floored at zero.
func (inv *Inventory) AvailableQuantity() int {
	if avail := inv.Quantity - inv.ReservedQuantity; avail > 0 {
		return avail
	}
	return 0
}

// CanReserve reports whether qty units can be reserved.
func (inv *Inventory) CanReserve(qty int) bool {
	return inv.AvailableQuantity() >= qty
}

// StockStatus is a computed point-in-time view of an inventory record.
type StockStatus struct {
	ProductID         string `json:"productId"`
	Status            string `json:"status"`
	Quantity          int    `json:"quantity"`
	ReservedQuantity  int    `json:"reservedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	InStock           bool   `json:"inStock"`
}

// NewStockStatus derives a StockStatus from an inventory record.
func NewStockStatus(inv *Inventory) *StockStatus {
	avail := inv.AvailableQuantity()
	return &StockStatus{
		ProductID:         inv.ProductID,
		Status:            inv.Status,
		Quantity:          inv.Quantity,
		ReservedQuantity:  inv.ReservedQuantity,
		AvailableQuantity: avail,
		InStock:           avail > 0,
	}
}

package domain

import "time"

// Category represents a product category.
//
// ParentID models a nested hierarchy but creation currently always produces
// root-style values (Level=1, Path="/"+Name); nested paths are not built.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ParentID     *string   `json:"parentId,omitempty"`
	Level        int       `json:"level"`
	Path         string    `json:"path"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ProductCount int       `json:"productCount"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsAvailable reports whether the category is active.
func (c *Category) IsAvailable() bool {
	return c.Active
}

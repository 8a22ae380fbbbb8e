package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ski-shop-inventory/internal/domain"
)

type postgresInventoryRepository struct {
	db *sql.DB
}

// NewPostgresInventoryRepository creates an InventoryRepository backed by
// Postgres
func NewPostgresInventoryRepository(db *sql.DB) InventoryRepository {
	return &postgresInventoryRepository{db: db}
}

// Put creates or replaces the inventory record for a product
func (r *postgresInventoryRepository) Put(ctx context.Context, inventory *domain.Inventory) error {
	query := `
		INSERT INTO inventory (product_id, status, quantity, reserved_quantity, location_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (product_id) DO UPDATE
		SET status = EXCLUDED.status,
		    quantity = EXCLUDED.quantity,
		    reserved_quantity = EXCLUDED.reserved_quantity,
		    location_code = EXCLUDED.location_code,
		    updated_at = NOW()
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		inventory.ProductID,
		inventory.Status,
		inventory.Quantity,
		inventory.ReservedQuantity,
		inventory.LocationCode,
	)

	if err != nil {
		return fmt.Errorf("failed to put inventory: %w", err)
	}

	return nil
}

// FindByProductID retrieves the inventory record for a product
func (r *postgresInventoryRepository) FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error) {
	query := `
		SELECT product_id, status, quantity, reserved_quantity, location_code
		FROM inventory
		WHERE product_id = $1
	`

	inventory := &domain.Inventory{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&inventory.ProductID,
		&inventory.Status,
		&inventory.Quantity,
		&inventory.ReservedQuantity,
		&inventory.LocationCode,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to find inventory by product ID: %w", err)
	}

	return inventory, nil
}

// FindByProductIDs retrieves the subset of records matching the given ids.
// Ids without a record are silently omitted from the result.
func (r *postgresInventoryRepository) FindByProductIDs(ctx context.Context, productIDs []string) (map[string]*domain.Inventory, error) {
	result := make(map[string]*domain.Inventory, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT product_id, status, quantity, reserved_quantity, location_code
		FROM inventory
		WHERE product_id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch find inventory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		inventory := &domain.Inventory{}
		err := rows.Scan(
			&inventory.ProductID,
			&inventory.Status,
			&inventory.Quantity,
			&inventory.ReservedQuantity,
			&inventory.LocationCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		result[inventory.ProductID] = inventory
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return result, nil
}

// List retrieves all inventory records in creation order
func (r *postgresInventoryRepository) List(ctx context.Context) ([]*domain.Inventory, error) {
	query := `
		SELECT product_id, status, quantity, reserved_quantity, location_code
		FROM inventory
		ORDER BY created_at ASC, product_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	inventories := []*domain.Inventory{}
	for rows.Next() {
		inventory := &domain.Inventory{}
		err := rows.Scan(
			&inventory.ProductID,
			&inventory.Status,
			&inventory.Quantity,
			&inventory.ReservedQuantity,
			&inventory.LocationCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		inventories = append(inventories, inventory)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return inventories, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"ski-shop-inventory/internal/domain"
)

// Snapshot fields (category, price, inventory, images) and free-form fields
// (attributes, tags) are stored as JSONB columns: they are copied values,
// never joined against live records, so relational shape buys nothing.
type postgresProductRepository struct {
	db *sql.DB
}

// NewPostgresProductRepository creates a ProductRepository backed by Postgres
func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

const productColumns = `id, sku, name, description, brand, attributes, tags, category, price, inventory, images, active, created_at, updated_at`

// Create inserts a new product using parameterized queries
func (r *postgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	attributes, tags, category, price, inventory, images, err := marshalProductJSON(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.Brand,
		attributes,
		tags,
		category,
		price,
		inventory,
		images,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *postgresProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindBySKU retrieves the first product with the given SKU in creation
// order. SKU uniqueness is not enforced by the schema.
func (r *postgresProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE sku = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}

	return product, nil
}

// FindByIDs retrieves the products whose ids appear in the given set.
// Missing ids are silently omitted.
func (r *postgresProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		WHERE id IN (%s)
		ORDER BY created_at ASC, id ASC
	`, strings.Join(placeholders, ", "))

	return r.queryProducts(ctx, query, args...)
}

// List retrieves products sorted by the named field with offset pagination.
// Unknown sort fields fall back to name ascending.
func (r *postgresProductRepository) List(ctx context.Context, page, size int, sortBy string, sortOrder SortOrder) ([]*domain.Product, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}

	// Sort expressions are taken from a fixed map, never from the caller.
	sortExpressions := map[string]string{
		"name":       "name",
		"sku":        "sku",
		"brand":      "brand",
		"createdAt":  "created_at",
		"created_at": "created_at",
		"price":      "(price->>'currentPrice')::numeric",
	}

	direction := "ASC"
	if sortOrder == SortOrderDesc {
		direction = "DESC"
	}

	expression, ok := sortExpressions[sortBy]
	if !ok {
		expression = "name"
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2
	`, expression, direction)

	return r.queryProducts(ctx, query, size, page*size)
}

// Search retrieves products whose name or description contains the keyword,
// case-insensitively, in creation order
func (r *postgresProductRepository) Search(ctx context.Context, keyword string, page, size int) ([]*domain.Product, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`

	return r.queryProducts(ctx, query, keyword, size, page*size)
}

// ListByCategory retrieves products whose embedded category snapshot has the
// given id
func (r *postgresProductRepository) ListByCategory(ctx context.Context, categoryID string, page, size int) ([]*domain.Product, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category->>'id' = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`

	return r.queryProducts(ctx, query, categoryID, size, page*size)
}

func (r *postgresProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func marshalProductJSON(product *domain.Product) (attributes, tags, category, price, inventory, images []byte, err error) {
	if attributes, err = json.Marshal(product.Attributes); err != nil {
		return
	}
	if tags, err = json.Marshal(product.Tags); err != nil {
		return
	}
	if category, err = json.Marshal(product.Category); err != nil {
		return
	}
	if price, err = json.Marshal(product.Price); err != nil {
		return
	}
	if inventory, err = json.Marshal(product.Inventory); err != nil {
		return
	}
	images, err = json.Marshal(product.Images)
	return
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var attributes, tags, category, price, inventory, images []byte

	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.Brand,
		&attributes,
		&tags,
		&category,
		&price,
		&inventory,
		&images,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		raw  []byte
		dest any
	}{
		{attributes, &product.Attributes},
		{tags, &product.Tags},
		{category, &product.Category},
		{price, &product.Price},
		{inventory, &product.Inventory},
		{images, &product.Images},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, err
		}
	}

	return product, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ski-shop-inventory/internal/domain"
)

type postgresCategoryRepository struct {
	db *sql.DB
}

// NewPostgresCategoryRepository creates a CategoryRepository backed by
// Postgres
func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

// Create inserts a new category using parameterized queries
func (r *postgresCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, parent_id, level, path, active, created_at, updated_at, product_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Description,
		category.ParentID,
		category.Level,
		category.Path,
		category.Active,
		category.CreatedAt,
		category.UpdatedAt,
		category.ProductCount,
	)

	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// FindByID retrieves a category by ID
func (r *postgresCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `
		SELECT id, name, description, parent_id, level, path, active, created_at, updated_at, product_count
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// List retrieves categories in creation order with an optional
// case-insensitive name filter and offset pagination
func (r *postgresCategoryRepository) List(ctx context.Context, search string, page, size int) ([]*domain.Category, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}

	query := `
		SELECT id, name, description, parent_id, level, path, active, created_at, updated_at, product_count
		FROM categories
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, search, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	var parentID sql.NullString

	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&parentID,
		&category.Level,
		&category.Path,
		&category.Active,
		&category.CreatedAt,
		&category.UpdatedAt,
		&category.ProductCount,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		category.ParentID = &parentID.String
	}
	return category, nil
}

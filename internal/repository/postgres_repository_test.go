package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"ski-shop-inventory/internal/database"
	"ski-shop-inventory/internal/domain"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (teardown func(context.Context, ...testcontainers.TerminateOption) error, err error) {
	// testcontainers panics (rather than returning an error) when no Docker
	// host can be detected; surface that as the error TestMain already handles.
	defer func() {
		if r := recover(); r != nil {
			teardown, err = nil, fmt.Errorf("docker not available: %v", r)
		}
	}()

	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err = database.RunMigrations(testDB, "../../migrations", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		// The in-memory tests in this package do not need the container.
		log.Printf("postgres container unavailable, skipping postgres tests: %v", err)
		testDB = nil
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func requirePostgres(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container not available")
	}
}

func cleanTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"inventory", "products", "categories"} {
		if _, err := testDB.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
}

func TestPostgresCategoryRepository(t *testing.T) {
	requirePostgres(t)
	cleanTables(t)

	repo := NewPostgresCategoryRepository(testDB)
	ctx := context.Background()

	parentID := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Microsecond)

	parent := &domain.Category{
		ID:        parentID,
		Name:      "Skis",
		Level:     1,
		Path:      "/Skis",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, parent); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	child := &domain.Category{
		ID:        uuid.New().String(),
		Name:      "Alpine Skis",
		ParentID:  &parentID,
		Level:     1,
		Path:      "/Alpine Skis",
		Active:    true,
		CreatedAt: now.Add(time.Second),
		UpdatedAt: now.Add(time.Second),
	}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("find by id round-trips parent_id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, child.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.ParentID == nil || *found.ParentID != parentID {
			t.Error("ParentID should round-trip through the nullable column")
		}

		root, err := repo.FindByID(ctx, parentID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if root.ParentID != nil {
			t.Error("root category should have nil ParentID")
		}
	})

	t.Run("unknown id maps to ErrCategoryNotFound", func(t *testing.T) {
		if _, err := repo.FindByID(ctx, uuid.New().String()); !errors.Is(err, ErrCategoryNotFound) {
			t.Errorf("expected ErrCategoryNotFound, got %v", err)
		}
	})

	t.Run("list with name filter", func(t *testing.T) {
		all, err := repo.List(ctx, "", 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("unfiltered List returned %d categories, want 2", len(all))
		}

		filtered, err := repo.List(ctx, "alpine", 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(filtered) != 1 || filtered[0].ID != child.ID {
			t.Error("ILIKE filter should match Alpine Skis only")
		}
	})
}

func TestPostgresProductRepository(t *testing.T) {
	requirePostgres(t)
	cleanTables(t)

	repo := NewPostgresProductRepository(testDB)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	category := &domain.Category{ID: uuid.New().String(), Name: "Skis", Path: "/Skis", Active: true, CreatedAt: base, UpdatedAt: base}
	sale := 80.0

	newProduct := func(sku, name string, price float64, offset time.Duration) *domain.Product {
		created := base.Add(offset)
		return &domain.Product{
			ID:          uuid.New().String(),
			SKU:         sku,
			Name:        name,
			Description: "All mountain ski",
			Brand:       "Alpine Co",
			Attributes:  map[string]any{"length": "170cm"},
			Tags:        []string{"ski", "winter"},
			Category:    category,
			Price:       domain.NewPriceInfo(price, &sale, "JPY", nil, nil),
			Inventory: &domain.InventoryInfo{
				Status:            domain.StatusInStock,
				Quantity:          10,
				AvailableQuantity: 10,
			},
			Images:    []domain.ProductImage{},
			Active:    true,
			CreatedAt: created,
			UpdatedAt: created,
		}
	}

	first := newProduct("SKU-1", "Aspen", 100, 0)
	second := newProduct("SKU-2", "Birch", 300, time.Second)
	third := newProduct("SKU-1", "Cedar", 200, 2*time.Second)
	for _, p := range []*domain.Product{first, second, third} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	t.Run("find by id round-trips JSONB snapshots", func(t *testing.T) {
		found, err := repo.FindByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Category == nil || found.Category.ID != category.ID {
			t.Error("category snapshot should round-trip")
		}
		if found.Price == nil || found.Price.CurrentPrice != sale {
			t.Error("price snapshot should round-trip with the stored current price")
		}
		if found.Inventory == nil || found.Inventory.Quantity != 10 {
			t.Error("inventory snapshot should round-trip")
		}
		if got := found.Attributes["length"]; got != "170cm" {
			t.Errorf("attributes round-trip: length = %v, want 170cm", got)
		}
	})

	t.Run("find by sku returns the first created match", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, "SKU-1")
		if err != nil {
			t.Fatalf("FindBySKU failed: %v", err)
		}
		if found.ID != first.ID {
			t.Errorf("FindBySKU returned %s, want first created %s", found.ID, first.ID)
		}
	})

	t.Run("find by ids omits missing", func(t *testing.T) {
		products, err := repo.FindByIDs(ctx, []string{first.ID, uuid.New().String(), third.ID})
		if err != nil {
			t.Fatalf("FindByIDs failed: %v", err)
		}
		if len(products) != 2 {
			t.Errorf("FindByIDs returned %d products, want 2", len(products))
		}
	})

	t.Run("list sorts by json price expression", func(t *testing.T) {
		products, err := repo.List(ctx, 0, 10, "price", SortOrderDesc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		// All three share the same sale price, so the id tiebreak applies;
		// name sorting is the meaningful check here.
		if len(products) != 3 {
			t.Fatalf("List returned %d products, want 3", len(products))
		}

		byName, err := repo.List(ctx, 0, 10, "name", SortOrderDesc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if byName[0].Name != "Cedar" || byName[2].Name != "Aspen" {
			t.Error("List by name descending should order Cedar first, Aspen last")
		}
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		products, err := repo.Search(ctx, "ASPEN", 0, 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(products) != 1 || products[0].ID != first.ID {
			t.Error("ILIKE search should match Aspen")
		}
	})

	t.Run("list by category uses the snapshot id", func(t *testing.T) {
		products, err := repo.ListByCategory(ctx, category.ID, 0, 10)
		if err != nil {
			t.Fatalf("ListByCategory failed: %v", err)
		}
		if len(products) != 3 {
			t.Errorf("ListByCategory returned %d products, want 3", len(products))
		}
	})
}

func TestPostgresInventoryRepository(t *testing.T) {
	requirePostgres(t)
	cleanTables(t)

	repo := NewPostgresInventoryRepository(testDB)
	ctx := context.Background()

	id1 := uuid.New().String()
	id2 := uuid.New().String()

	err := repo.Put(ctx, &domain.Inventory{ProductID: id1, Status: domain.StatusInStock, Quantity: 10, LocationCode: "WH-01"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	err = repo.Put(ctx, &domain.Inventory{ProductID: id2, Status: domain.StatusInStock, Quantity: 3})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	t.Run("put upserts on conflict", func(t *testing.T) {
		err := repo.Put(ctx, &domain.Inventory{ProductID: id1, Status: domain.StatusInStock, Quantity: 8, ReservedQuantity: 2, LocationCode: "WH-01"})
		if err != nil {
			t.Fatalf("upsert Put failed: %v", err)
		}

		found, err := repo.FindByProductID(ctx, id1)
		if err != nil {
			t.Fatalf("FindByProductID failed: %v", err)
		}
		if found.Quantity != 8 || found.ReservedQuantity != 2 {
			t.Errorf("record = q%d/r%d, want q8/r2", found.Quantity, found.ReservedQuantity)
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("upsert created a duplicate: List returned %d records", len(all))
		}
	})

	t.Run("unknown product maps to ErrInventoryNotFound", func(t *testing.T) {
		if _, err := repo.FindByProductID(ctx, uuid.New().String()); !errors.Is(err, ErrInventoryNotFound) {
			t.Errorf("expected ErrInventoryNotFound, got %v", err)
		}
	})

	t.Run("batch lookup omits missing ids", func(t *testing.T) {
		result, err := repo.FindByProductIDs(ctx, []string{id1, uuid.New().String(), id2})
		if err != nil {
			t.Fatalf("FindByProductIDs failed: %v", err)
		}
		if len(result) != 2 {
			t.Errorf("FindByProductIDs returned %d records, want 2", len(result))
		}
	})
}

package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"ski-shop-inventory/internal/config"
	custommiddleware "ski-shop-inventory/internal/middleware"
	"ski-shop-inventory/internal/repository"
	"ski-shop-inventory/internal/service"
	"ski-shop-inventory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Repositories bundles the storage backends injected into the server.
type Repositories struct {
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Inventory  repository.InventoryRepository
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer assembles the router, services, and handlers. db and redisClient
// may be nil when the memory store driver is used and rate limiting is
// disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, repos Repositories, db *sql.DB, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	if redisClient != nil && cfg.RateLimit.Enabled {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "inventory_rate_limit",
		}, logger))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	catalogService := service.NewCatalogService(repos.Categories, repos.Products, repos.Inventory)
	stockService := service.NewStockService(repos.Inventory)

	transport.NewCategoryHandler(catalogService, logger).RegisterRoutes(router)
	transport.NewProductHandler(catalogService, logger).RegisterRoutes(router)
	transport.NewInventoryHandler(stockService, logger).RegisterRoutes(router)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

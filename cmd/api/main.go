package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ski-shop-inventory/internal/config"
	"ski-shop-inventory/internal/database"
	"ski-shop-inventory/internal/logger"
	"ski-shop-inventory/internal/repository"
	"ski-shop-inventory/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server gets 30 seconds to finish in-flight requests.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting inventory service",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
	)

	repos, db := buildRepositories(cfg, log)

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	srv := server.NewServer(cfg, log, repos, db, redisClient)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}

// buildRepositories wires the storage backend selected by STORE_DRIVER. The
// returned *sql.DB is nil for the in-memory driver.
func buildRepositories(cfg *config.Config, log *zap.Logger) (server.Repositories, *sql.DB) {
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return server.Repositories{
			Categories: repository.NewMemoryCategoryRepository(),
			Products:   repository.NewMemoryProductRepository(),
			Inventory:  repository.NewMemoryInventoryRepository(),
		}, nil
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db, "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	return server.Repositories{
		Categories: repository.NewPostgresCategoryRepository(db),
		Products:   repository.NewPostgresProductRepository(db),
		Inventory:  repository.NewPostgresInventoryRepository(db),
	}, db
}

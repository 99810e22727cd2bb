package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/catalog"
	"stockroom/internal/config"
	"stockroom/internal/database"
	"stockroom/internal/events"
	"stockroom/internal/handler"
	"stockroom/internal/idempotency"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/router"
	"stockroom/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the repositories selected by the storage driver.
type stores struct {
	products repository.ProductRepository
	stock    repository.StockRepository
	orders   repository.OrderRepository
	close    func()
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, cfg.ServiceName)
	logger.Info().Str("storage", cfg.Storage.Driver).Msg("starting stockroom API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.Catalog.SeedFile != "" {
		if err := seedCatalog(ctx, cfg, st.products, logger); err != nil {
			return err
		}
	}

	idemStore, closeIdem, err := openIdempotencyStore(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeIdem()

	publisher := openPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	productService := service.NewProductService(st.products, logger)
	ledger := service.NewInventoryLedger(st.stock, logger)
	orderService := service.NewOrderService(st.orders, st.products, ledger, publisher, idemStore, logger)
	statsService := service.NewStatisticsService(st.orders, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, statsService, logger)

	keys := map[string]model.Role{cfg.Auth.AdminAPIKey: model.RoleAdmin}
	if cfg.Auth.StaffAPIKey != "" {
		keys[cfg.Auth.StaffAPIKey] = model.RoleStaff
	}

	// Initialize router
	mux := router.New(productHandler, orderHandler, keys, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// openStores connects the repositories for the configured storage driver.
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		products := repository.NewMemoryProductStore()
		return &stores{
			products: products,
			stock:    products,
			orders:   repository.NewMemoryOrderStore(),
			close:    func() {},
		}, nil
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, cfg.ServiceName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &stores{
		products: repository.NewProductRepository(pool, logger),
		stock:    repository.NewStockRepository(pool, logger),
		orders:   repository.NewOrderRepository(pool, logger),
		close:    pool.Close,
	}, nil
}

// seedCatalog loads the catalogue file from S3 with a local fallback.
func seedCatalog(ctx context.Context, cfg *config.Config, products repository.ProductRepository, logger zerolog.Logger) error {
	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader

	if cfg.S3.Enabled {
		loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for catalogue files (S3 disabled)")
	}

	seeder := catalog.NewSeeder(catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, logger), products, logger)
	if _, err := seeder.Seed(ctx, cfg.Catalog.SeedFile); err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}
	return nil
}

// openIdempotencyStore returns a Redis backed store when enabled and an
// in-process one otherwise.
func openIdempotencyStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (idempotency.Store, func(), error) {
	if !cfg.Enabled {
		return idempotency.NewMemoryStore(cfg.IdempotencyTTL), func() {}, nil
	}

	client, err := idempotency.NewRedisClient(ctx, cfg.URL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	closeFn := func() { closeQuietly(client, "redis client", logger) }
	return idempotency.NewRedisStore(client, cfg.IdempotencyTTL, logger), closeFn, nil
}

func openPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if !cfg.Kafka.Enabled {
		logger.Info().Msg("event publishing disabled")
		return events.NopPublisher{}
	}

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("publishing order events to kafka")
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.BufferSize, cfg.ServiceName, logger)
}

func closeQuietly(c io.Closer, name string, logger zerolog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Str("resource", name).Msg("failed to close")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"kitchen-ops/internal/adapter/redisstore"
	"kitchen-ops/internal/config"
	"kitchen-ops/internal/database"
	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/messaging"
	"kitchen-ops/internal/services/feed"
	"kitchen-ops/internal/services/inventory"
	"kitchen-ops/internal/services/kitchen"
	"kitchen-ops/internal/services/menu"
	"kitchen-ops/internal/services/order"
)

func main() {
	// Parse command line flags
	var (
		mode     = flag.String("mode", "", "Service mode (order-service, kitchen-service, kitchen-feed)")
		port     = flag.Int("port", 3000, "HTTP port")
		prefetch = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	// Validate required mode flag
	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": *port,
	})

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	// Route to appropriate service
	switch *mode {
	case "order-service":
		if err := runOrderService(ctx, cfg, log, *port); err != nil {
			log.Error("service_failed", "Order service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "kitchen-service":
		if err := runKitchenService(ctx, cfg, log, *port); err != nil {
			log.Error("service_failed", "Kitchen service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "kitchen-feed":
		if err := runKitchenFeed(ctx, cfg, log, *port, *prefetch); err != nil {
			log.Error("service_failed", "Kitchen feed failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runOrderService runs the checkout intake service
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	repo := order.NewRepository(db)
	service := order.NewService(repo, publisher, log)
	handler := order.NewHandler(service, log)

	return serveHTTP(ctx, log, port, "Order Service", handler.SetupRoutes())
}

// runKitchenService runs the operator surface that marks items ready and
// debits inventory
func runKitchenService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	// Redis backs the idempotency guard and the stock mirror. Both are
	// best-effort, so a dead Redis degrades the service instead of
	// stopping it.
	var (
		guard kitchen.ReadyGuard
		cache inventory.StockCache
	)
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error("redis_unavailable", "Redis unavailable, running without guard and stock mirror", requestID, err, nil)
		client.Close()
	} else {
		defer client.Close()
		adapter := redisstore.New(client)
		guard = adapter
		cache = adapter
		log.Info("redis_connected", "Connected to Redis", requestID, nil)
	}
	pingCancel()

	orders := kitchen.NewPostgresStore(db)
	recipes := menu.NewResolver(menu.NewPostgresStore(db), log)
	ledger := inventory.NewLedger(inventory.NewPostgresStore(db), cache, cfg.Inventory.PersistBaseUnits, log)

	service := kitchen.NewService(orders, recipes, ledger, guard, publisher, log)
	handler := kitchen.NewHandler(service, log)

	return serveHTTP(ctx, log, port, "Kitchen Service", handler.SetupRoutes())
}

// runKitchenFeed runs the feed projector: it backfills from the database,
// then follows order snapshots from the fanout queue while serving the
// rendered board over HTTP.
func runKitchenFeed(ctx context.Context, cfg *config.Config, log *logger.Logger, port, prefetch int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	projector := feed.NewProjector(feed.NewPostgresLister(db), log)
	if err := projector.Backfill(ctx); err != nil {
		return fmt.Errorf("failed to backfill feed: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.KitchenFeedQueue, "kitchen-feed", prefetch)

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.StartConsuming(ctx, projector.HandleEvent)
	}()

	handler := feed.NewHandler(projector, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- serveHTTP(ctx, log, port, "Kitchen Feed", handler.SetupRoutes())
	}()

	select {
	case err := <-consumerErr:
		if err != nil && err != context.Canceled {
			return fmt.Errorf("consumer failed: %w", err)
		}
		return <-serverErr
	case err := <-serverErr:
		return err
	}
}

// serveHTTP runs an HTTP server until the context is cancelled, then shuts
// it down gracefully
func serveHTTP(ctx context.Context, log *logger.Logger, port int, name string, mux *http.ServeMux) error {
	requestID := logger.GenerateRequestID()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Info("server_started", fmt.Sprintf("%s started on port %d", name, port), requestID, map[string]interface{}{
			"port": port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

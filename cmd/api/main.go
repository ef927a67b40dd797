package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookmart/internal/cache"
	"bookmart/internal/config"
	"bookmart/internal/database"
	"bookmart/internal/handler"
	"bookmart/internal/payment"
	"bookmart/internal/repository"
	"bookmart/internal/router"
	"bookmart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bookmart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply schema migrations before serving traffic
	if err := database.Migrate(cfg.Database, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	bookRepo := repository.NewBookRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Optional catalogue read cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise redis cache, serving catalogue reads from the database")
		} else {
			ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
			bookRepo = repository.NewCachedBookRepository(bookRepo, redisCache, ttl, logger)
		}
	}

	// Initialize services
	bookService := service.NewBookService(bookRepo, logger)
	cartService := service.NewCartService(cartRepo, bookRepo, logger)
	orderService := service.NewOrderService(cartRepo, orderRepo, cfg.Checkout.ShippingPrice, logger)

	// Initialize HTTP handlers
	bookHandler := handler.NewBookHandler(bookService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Online payments are optional; the gateway client refuses to start on
	// incomplete credentials.
	var paymentHandler *handler.PaymentHandler
	if cfg.Payment.Enabled {
		gateway, err := payment.NewClient(cfg.Payment, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize payment gateway client: %w", err)
		}
		paymentService := service.NewPaymentService(orderRepo, gateway, logger)
		paymentHandler = handler.NewPaymentHandler(paymentService, logger)
		logger.Info().Msg("online payments enabled")
	} else {
		logger.Info().Msg("online payments disabled")
	}

	// Initialize router
	mux := router.New(bookHandler, cartHandler, orderHandler, paymentHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

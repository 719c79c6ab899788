package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mittal-parth/agentic-commerce/internal/cart"
	"github.com/mittal-parth/agentic-commerce/internal/catalogue"
	"github.com/mittal-parth/agentic-commerce/internal/catalogue/cache"
	"github.com/mittal-parth/agentic-commerce/internal/checkout"
	"github.com/mittal-parth/agentic-commerce/internal/config"
	"github.com/mittal-parth/agentic-commerce/internal/httpapi"
	"github.com/mittal-parth/agentic-commerce/internal/outbox"
	"github.com/mittal-parth/agentic-commerce/internal/payment"
	"github.com/mittal-parth/agentic-commerce/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Product read cache is optional; without redis every lookup hits
	// sqlite directly.
	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		productCache = cache.NewRedisCache(client)
	}

	catalogueSvc := catalogue.NewService(db, productCache)
	cartSvc := cart.NewService(db, catalogueSvc)
	checkoutSvc := checkout.NewService(db, catalogueSvc,
		checkout.Merchant{VPA: cfg.MerchantVPA, Name: cfg.MerchantName},
		cfg.SessionTTL)
	signer := payment.NewSigner(cfg.MerchantSecret)
	reconciler := payment.NewReconciler(db, signer, catalogueSvc)

	discovery := httpapi.NewDiscoveryDocument(
		cfg.PublicURL, cfg.MerchantName, cfg.MerchantVPA, cfg.ProductCategories)

	handler := httpapi.NewHandler(cartSvc, catalogueSvc, checkoutSvc, reconciler, db, discovery)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SweepEnabled {
		sweeper := checkout.NewSweeper(db, cfg.SweepInterval)
		go sweeper.Run(ctx)
	}

	if len(cfg.KafkaBrokers) > 0 {
		poller := outbox.NewPoller(db, cfg.KafkaBrokers...)
		go poller.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.Router(cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("UCP merchant server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

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

	c "github.com/ArpitPareek/ME-QKART-BACKEND/internal/cache"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/config"
	h "github.com/ArpitPareek/ME-QKART-BACKEND/internal/httpapi"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/publisher"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/repository"
	s "github.com/ArpitPareek/ME-QKART-BACKEND/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()

	// Set up MongoDB connection
	ctx := context.Background()
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	if err := repository.EnsureCartIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	carts := repository.NewCartRepository(mongoDB)
	products := repository.NewProductRepository(mongoDB)
	users := repository.NewUserRepository(mongoDB)
	checkout := repository.NewCheckoutRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	cache := c.NewRedisCache(redisClient)
	service := s.NewCartService(carts, products, checkout, cache, cfg.DefaultPaymentOption)
	cartHandler := h.NewCartHandler(service, cfg.RequestTimeout)

	// Outbox poller publishes checkout events to Kafka in the background
	pollerCtx, stopPoller := context.WithCancel(ctx)
	poller := publisher.NewOutboxPoller(checkout, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/v1/cart", func(r chi.Router) {
		r.Use(h.Authenticate(users))
		r.Get("/", cartHandler.GetCart)
		r.Post("/", cartHandler.AddItem)
		r.Put("/", cartHandler.UpdateItem)
		r.Delete("/{productId}", cartHandler.RemoveItem)
		r.Put("/checkout", cartHandler.Checkout)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "cart-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Cart service listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down cart service...")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(ctx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}
	log.Println("Cart service stopped")
}

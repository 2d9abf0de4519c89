package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/internal/router"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/events"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/identity"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/payment"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
)

const (
	productCacheTTL = 10 * time.Minute
	ledgerTTL       = 30 * 24 * time.Hour
)

func main() {
	envErr := godotenv.Load()

	cfg, err := global.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := global.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Warn("no .env file loaded, using process environment", zap.Error(envErr))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *global.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := global.GetDefaultTimer()
	defer cancel()

	mongoClient, err := mongo.Connect(startCtx, cfg.MongoURI, logger)
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(startCtx, db, logger); err != nil {
		return err
	}

	redisClient := redis.NewClient(cfg.RedisAddress, cfg.RedisPassword)
	defer func() { _ = redisClient.Close() }()
	if err := redis.Ping(startCtx, redisClient); err != nil {
		return err
	}
	logger.Info("connected to Redis", zap.String("address", cfg.RedisAddress))

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic, logger)
		defer func() { _ = kafka.Close() }()
		publisher = kafka
		logger.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrdersTopic))
	}

	orderRepo := mongo.NewOrderRepository(db)
	orderStore := orders.NewStore(orderRepo, logger)
	carts := cart.NewSessions(redis.NewCartStorage(redisClient, cfg.CartTTL), logger, cart.WithIdleTimeout(min(cfg.CartTTL, cart.DefaultIdleTimeout)))
	identities := identity.NewProvider(mongo.NewCustomerRepository(db), redis.NewSessionStore(redisClient), cfg.SessionTTL, logger)

	orchestrator := checkout.NewOrchestrator(checkout.Deps{
		Carts:      carts,
		Identities: identities,
		Gateway:    payment.NewMockGateway("usd", logger),
		Orders:     orderStore,
		Ledger:     redis.NewLedger(redisClient, ledgerTTL),
		Publisher:  publisher,
		Shipping:   pricing.NewShippingPolicy(cfg.FreeShippingThreshold, cfg.ShippingFee),
		Logger:     logger,
	})

	handler := router.NewHandler(router.Services{
		Catalog:  catalog.NewService(mongo.NewCatalogRepository(db), redis.NewProductCache(redisClient, productCacheTTL), logger),
		Carts:    carts,
		Identity: identities,
		Checkout: orchestrator,
		Orders:   orderStore,
		Insights: ai.NewReporter(ai.NewClientFromEnv(logger), orderRepo),
		Health: func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewEngine(router.Options{Env: cfg.Env, CORSOrigins: cfg.CORSOrigins, Logger: logger}, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

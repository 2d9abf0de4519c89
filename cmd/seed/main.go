package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
)

func main() {
	forceReset := pflag.Bool("force-reset", false, "clear existing products, offers and orders before seeding")
	database := pflag.String("database", "", "database name (defaults to MONGODB_DATABASE)")
	pflag.Parse()

	envErr := godotenv.Load()

	cfg, err := global.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *database != "" {
		cfg.MongoDatabase = *database
	}

	logger, err := global.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Warn("no .env file loaded, using process environment", zap.Error(envErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.MongoURI, logger)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(ctx, db, logger); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}
	if err := mongo.Seed(ctx, db, *forceReset, logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete", zap.String("database", cfg.MongoDatabase), zap.Bool("force_reset", *forceReset))
}

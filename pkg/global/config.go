package global

import (
	"errors"
	"time"
)

var ErrMissingMongoURI = errors.New("MONGODB_URI is not set in environment variables")

// Config is the process configuration, read once from the environment after godotenv has loaded .env
type Config struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDatabase string
	RedisAddress  string
	RedisPassword string
	CartTTL       time.Duration
	SessionTTL    time.Duration

	ShippingFee           float64
	FreeShippingThreshold float64

	CORSOrigins      []string
	KafkaBrokers     []string
	KafkaOrdersTopic string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                  GetEnvOrDefault("PORT", "8000"),
		Env:                   GetEnvOrDefault("ENV", "development"),
		MongoURI:              GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase:         GetEnvOrDefault("MONGODB_DATABASE", "storefront"),
		RedisAddress:          GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:         GetEnvOrDefault("REDIS_PASSWORD", ""),
		CartTTL:               GetEnvDuration("CART_TTL", 7*24*time.Hour),
		SessionTTL:            GetEnvDuration("SESSION_TTL", 24*time.Hour),
		ShippingFee:           GetEnvFloat("SHIPPING_FEE", 10.00),
		FreeShippingThreshold: GetEnvFloat("FREE_SHIPPING_THRESHOLD", 100.00),
		CORSOrigins:           GetEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		KafkaBrokers:          GetEnvList("KAFKA_BROKERS", nil),
		KafkaOrdersTopic:      GetEnvOrDefault("KAFKA_ORDERS_TOPIC", "storefront.orders"),
	}

	if cfg.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

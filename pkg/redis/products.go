package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// ProductCache is the read-through cache in front of the catalog, keyed product:{id}
type ProductCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewProductCache(client *redisclient.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get returns nil and no error on a cache miss
func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	productJSON, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product %s from cache: %w", id, err)
	}

	var product models.Product
	if err := json.Unmarshal(productJSON, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product %s: %w", id, err)
	}
	return &product, nil
}

// Set caches the given products in a single pipeline
func (c *ProductCache) Set(ctx context.Context, products ...models.Product) error {
	if len(products) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("failed to marshal product %s: %w", product.ID, err)
		}
		pipe.Set(ctx, productKey(product.ID), productJSON, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for %d products: %w", len(products), err)
	}
	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to remove products from Redis cache: %w", err)
	}
	return nil
}

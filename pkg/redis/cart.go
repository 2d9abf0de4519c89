package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
)

// CartStorage keeps each cart as one JSON array value under cart:{sessionId}.
// The TTL is refreshed on every save so that abandoned carts expire.
type CartStorage struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewCartStorage(client *redisclient.Client, ttl time.Duration) *CartStorage {
	return &CartStorage{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *CartStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", sessionID, err)
	}
	return data, nil
}

func (s *CartStorage) Save(ctx context.Context, sessionID string, data []byte) error {
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", sessionID, err)
	}
	return nil
}

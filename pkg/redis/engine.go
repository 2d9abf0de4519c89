package redis

import (
	"context"
	"fmt"

	redisclient "github.com/redis/go-redis/v9"
)

func NewClient(address, password string) *redisclient.Client {
	return redisclient.NewClient(&redisclient.Options{
		Addr:     address,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
}

// Ping verifies the server is reachable before the API starts serving
func Ping(ctx context.Context, client *redisclient.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

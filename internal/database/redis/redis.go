package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"claims-service/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const claimCacheTTL = 5 * time.Minute

// Client wraps Redis with the claim read cache. Mutating operations
// invalidate the cached entry; readers fall through to Postgres on miss.
type Client struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(host, port, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

func claimKey(id uuid.UUID) string {
	return "claim:" + id.String()
}

// GetClaim returns the cached claim, or nil on miss or decode failure.
func (c *Client) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	raw, err := c.client.Get(ctx, claimKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read claim cache: %w", err)
	}

	var claim models.Claim
	if err := json.Unmarshal(raw, &claim); err != nil {
		// A stale or corrupt entry is a miss, not an error.
		c.client.Del(ctx, claimKey(id))
		return nil, nil
	}
	return &claim, nil
}

// SetClaim caches a claim snapshot with a short TTL.
func (c *Client) SetClaim(ctx context.Context, claim *models.Claim) error {
	raw, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("failed to marshal claim for cache: %w", err)
	}
	if err := c.client.Set(ctx, claimKey(claim.ID), raw, claimCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache claim: %w", err)
	}
	return nil
}

// InvalidateClaim drops the cached entry after any write.
func (c *Client) InvalidateClaim(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, claimKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate claim cache: %w", err)
	}
	return nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

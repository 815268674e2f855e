package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
)

// NotificationQueueKey is the redis list the worker consumes.
const NotificationQueueKey = "notifications:queue"

// featureTTL bounds staleness of cached plan feature sets.
const featureTTL = 5 * time.Minute

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Wrap builds a cache client over an existing redis client (tests).
func Wrap(client *redis.Client) *Client {
	return &Client{Client: client}
}

func featureKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:features:%s", tenantID)
}

// GetFeatures returns the cached feature set for a tenant. The second
// return value reports a cache hit; errors degrade to a miss.
func (c *Client) GetFeatures(ctx context.Context, tenantID uuid.UUID) (map[string]bool, bool) {
	data, err := c.Client.Get(ctx, featureKey(tenantID)).Bytes()
	if err != nil {
		return nil, false
	}

	var features map[string]bool
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, false
	}
	return features, true
}

// SetFeatures caches the feature set for a tenant.
func (c *Client) SetFeatures(ctx context.Context, tenantID uuid.UUID, features map[string]bool) {
	data, err := json.Marshal(features)
	if err != nil {
		return
	}
	c.Client.Set(ctx, featureKey(tenantID), data, featureTTL)
}

// InvalidateFeatures drops the cached feature set, called when a tenant's
// plan changes.
func (c *Client) InvalidateFeatures(ctx context.Context, tenantID uuid.UUID) error {
	return c.Client.Del(ctx, featureKey(tenantID)).Err()
}

// EnqueueNotification pushes a notification event onto the worker queue.
func (c *Client) EnqueueNotification(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return c.Client.LPush(ctx, NotificationQueueKey, data).Err()
}

// DequeueNotification blocks up to timeout waiting for the next queued
// notification. redis.Nil is returned on timeout.
func (c *Client) DequeueNotification(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := c.Client.BRPop(ctx, timeout, NotificationQueueKey).Result()
	if err != nil {
		return nil, err
	}
	// result[0] is the key, result[1] the value
	return []byte(result[1]), nil
}

// Close closes the Redis client.
func (c *Client) Close() error {
	return c.Client.Close()
}

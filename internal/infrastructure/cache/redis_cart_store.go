package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockroom/backend/internal/domain/cart"
)

const defaultCartKeyPrefix = "stockroom:cart:"

// RedisCartStore keeps each cart as one JSON value. Every write refreshes the TTL,
// so a cart lives for ttl after its last change.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a cart store on an existing Redis client
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client:    client,
		keyPrefix: defaultCartKeyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisCartStore) key(sessionKey string) string {
	return s.keyPrefix + sessionKey
}

// Get loads the cart stored under key, or an empty cart
func (s *RedisCartStore) Get(ctx context.Context, key string) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	c.SessionKey = key
	return &c, nil
}

// Set stores the cart under key, replacing the previous value
func (s *RedisCartStore) Set(ctx context.Context, key string, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, key)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

// Clear removes the cart stored under key
func (s *RedisCartStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ cart.SessionStore = (*RedisCartStore)(nil)

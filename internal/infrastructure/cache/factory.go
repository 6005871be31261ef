package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stockroom/backend/internal/domain/cart"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewCartStore builds the cart store selected by cfg.Store.
// A redis store needs a client; memory stores ignore it.
func NewCartStore(cfg config.CartConfig, client *redis.Client, logger *zap.Logger) (cart.SessionStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Store {
	case config.CartStoreRedis:
		if client == nil {
			return nil, fmt.Errorf("cart store %q requires a redis client", cfg.Store)
		}
		logger.Info("Using Redis cart store", zap.Duration("ttl", cfg.TTL))
		return NewRedisCartStore(client, cfg.TTL), nil
	case config.CartStoreMemory:
		logger.Warn("Using in-memory cart store; carts are lost on restart and not shared between instances")
		return NewInMemoryCartStore(cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cart store %q", cfg.Store)
	}
}

package cache

import (
	"context"

	"go.uber.org/zap"
)

// NewStore builds the configured cache backend. An empty address selects the
// in-process store; a Redis address that cannot be reached degrades to the
// in-process store with a warning rather than failing startup.
func NewStore(ctx context.Context, redisAddr string, log *zap.SugaredLogger) Store {
	if redisAddr == "" {
		return NewMemoryStore()
	}
	store, err := NewRedisStore(ctx, redisAddr)
	if err != nil {
		log.Warnw("redis unavailable, using in-memory cache", "addr", redisAddr, "error", err)
		return NewMemoryStore()
	}
	log.Infow("redis cache connected", "addr", redisAddr)
	return store
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is the key/value boundary used by every expensive pipeline stage.
// Get reports absence via the second return value; expired keys are absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// ClearPattern deletes every key matching a glob-style pattern and
	// returns the number of keys removed.
	ClearPattern(ctx context.Context, pattern string) (int, error)
}

// GetOrCompute is the explicit check-cache-else-compute-and-populate wrapper.
// Values are stored as JSON. A compute error propagates and nothing is
// cached; cache read/write failures degrade to recomputation rather than
// failing the caller.
func GetOrCompute[T any](ctx context.Context, store Store, log *zap.SugaredLogger, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, bool, error) {
	var out T
	if raw, ok, err := store.Get(ctx, key); err != nil {
		log.Warnw("cache get failed", "key", key, "error", err)
	} else if ok {
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, true, nil
		}
		log.Warnw("cache entry undecodable, recomputing", "key", key)
	}

	out, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return out, false, fmt.Errorf("encode cache value for %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw, ttl); err != nil {
		log.Warnw("cache set failed", "key", key, "error", err)
	}
	return out, false, nil
}

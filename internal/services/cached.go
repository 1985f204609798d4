package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"finbook/internal/cache"
)

// cacheLookup probes the shared cache for a JSON-encoded value. Decode
// failures count as misses so a stale or corrupt entry degrades to a
// recompute instead of an error.
func cacheLookup[T any](c cache.Cache[[]byte], key string) (T, bool) {
	var v T
	data, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.Delete(key)
		return v, false
	}
	return v, true
}

// cacheStore writes a JSON-encoded value under a group tag. Failures are
// logged and swallowed, caching is best effort.
func cacheStore[T any](ctx context.Context, c cache.Cache[[]byte], key, group string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode cache entry", "key", key, "error", err)
		return
	}
	c.Set(key, group, data)
}

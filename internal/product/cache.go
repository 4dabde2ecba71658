package product

import (
	"context"
	"time"
)

// ListCacheKey holds the serialized public catalog listing.
const ListCacheKey = "catalog:products:list"

// Cache is a read-through store for catalog listings. Implementations must
// treat every failure as a miss; the database stays authoritative.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type noopCache struct{}

// NoopCache disables caching.
func NoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string, any) bool { return false }
func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error { return nil }

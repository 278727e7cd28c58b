package cache

import (
	"context"
	"time"
)

// Prefixed namespaces every key of inner with prefix, so several services
// can share one Redis database or cache directory.
//
//	serverCache := cache.Prefixed(redisCache, "tokenviz:server:")
//	clientCache := cache.Prefixed(redisCache, "tokenviz:client:")
func Prefixed(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	if prefix == "" {
		return inner
	}
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Cache
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.inner.Close() }

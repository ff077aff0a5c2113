package cache

import (
	"context"
	"errors"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

var errMemoryMiss = errors.New("cache: memory miss")

// Memory is an in-process CacheProvider backed by a go-repository-cache
// service. Every entry lives for the service TTL.
type Memory struct {
	service repocache.CacheService
}

var _ interfaces.CacheProvider = (*Memory)(nil)

// NewMemory returns an empty memory cache. A non positive ttl keeps the
// service default.
func NewMemory(ttl time.Duration) (*Memory, error) {
	cfg := repocache.DefaultConfig()
	if ttl > 0 {
		cfg.TTL = ttl
	}
	// Entries are written explicitly through Set, there is no fetch to refresh from.
	cfg.EarlyRefresh = nil
	cfg.MissingRecordStorage = false

	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}
	return &Memory{service: service}, nil
}

func (m *Memory) Get(ctx context.Context, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, err := m.service.GetOrFetch(ctx, key, func(context.Context) (any, error) {
		return nil, errMemoryMiss
	})
	if err != nil {
		if errors.Is(err, errMemoryMiss) {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, err
	}
	return value, nil
}

// Set replaces the entry under key. The per call ttl is ignored in favour of
// the service TTL.
func (m *Memory) Set(ctx context.Context, key string, value any, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.service.Delete(ctx, key); err != nil {
		return err
	}
	_, err := m.service.GetOrFetch(ctx, key, func(context.Context) (any, error) {
		return value, nil
	})
	return err
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.service.Delete(ctx, key)
}

// Clear drops every entry.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.service.DeleteByPrefix(ctx, "")
}

// DeletePrefix drops the entries whose key starts with prefix.
func (m *Memory) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.service.DeleteByPrefix(ctx, prefix)
}

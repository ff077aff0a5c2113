// Package cache provides the CacheProvider backends used by the post store.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/adapters/noop"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Enabled  bool
	Provider string
	TTL      time.Duration
	RedisURL string
	Prefix   string
}

// New builds the backend named by cfg.Provider. A disabled cache yields the
// no-op provider.
func New(ctx context.Context, cfg Config) (interfaces.CacheProvider, error) {
	if !cfg.Enabled {
		return noop.Cache(), nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderMemory:
		memory, err := NewMemory(cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("cache: memory: %w", err)
		}
		return memory, nil
	case ProviderRedis:
		return NewRedis(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		return nil, fmt.Errorf("cache: unknown provider %q", cfg.Provider)
	}
}

package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get when the key is not stored or expired.
var ErrCacheMiss = errors.New("cache: miss")

// CacheProvider stores opaque values under string keys. Values written by the
// post store are JSON encoded byte slices so remote backends can share them.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

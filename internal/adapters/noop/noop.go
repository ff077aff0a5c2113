package noop

import (
	"context"
	"html"
	"time"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Cache returns an interfaces.CacheProvider that stores nothing. Every Get
// is a miss.
func Cache() interfaces.CacheProvider {
	return cacheAdapter{}
}

type cacheAdapter struct{}

// IsCache reports whether provider is the no-op cache.
func IsCache(provider interfaces.CacheProvider) bool {
	_, ok := provider.(cacheAdapter)
	return ok
}

func (cacheAdapter) Get(context.Context, string) (any, error) {
	return nil, interfaces.ErrCacheMiss
}

func (cacheAdapter) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (cacheAdapter) Delete(context.Context, string) error {
	return nil
}

func (cacheAdapter) Clear(context.Context) error {
	return nil
}

// Renderer returns a markdown renderer that escapes the body inside a
// single paragraph instead of rendering it.
func Renderer() interfaces.MarkdownRenderer {
	return rendererAdapter{}
}

type rendererAdapter struct{}

func (rendererAdapter) Render(ctx context.Context, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "<p>" + html.EscapeString(string(body)) + "</p>", nil
}

package blog

import (
	"context"

	"github.com/goliatone/go-blog/internal/di"
	bloghttp "github.com/goliatone/go-blog/internal/http"
	"github.com/goliatone/go-blog/internal/i18n"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Post exports the assembled post type.
type Post = interfaces.Post

// PostMetadata exports the validated front matter type.
type PostMetadata = interfaces.PostMetadata

// Language exports the registry language descriptor.
type Language = interfaces.Language

// StaticParam exports the pre-renderable route pair.
type StaticParam = interfaces.StaticParam

// Store exports the filesystem post store.
type Store = *posts.Store

// Registry exports the language registry.
type Registry = *i18n.Registry

// Pipeline exports the markdown render pipeline.
type Pipeline = *markdown.Pipeline

// Option customises the module wiring.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithCache          = di.WithCache
	WithRenderer       = di.WithRenderer
	WithContentFS      = di.WithContentFS
)

// Module represents the top level blog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog module from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the configured post store.
func (m *Module) Posts() Store {
	return m.container.Store()
}

// Languages returns the language registry.
func (m *Module) Languages() Registry {
	return m.container.Registry()
}

// Markdown returns the render pipeline.
func (m *Module) Markdown() Pipeline {
	return m.container.Pipeline()
}

// Logger returns the root blog logger.
func (m *Module) Logger() interfaces.Logger {
	return m.container.Logger()
}

// GetPost loads one post. See posts.Store.GetPost.
func (m *Module) GetPost(ctx context.Context, slug, language string) (*Post, bool, error) {
	return m.container.Store().GetPost(ctx, slug, language)
}

// ListPosts lists every valid post of language, drafts included.
func (m *Module) ListPosts(ctx context.Context, language string) ([]*Post, error) {
	return m.container.Store().ListPosts(ctx, language)
}

// StaticParams lists every pre-renderable (slug, language) pair.
func (m *Module) StaticParams(ctx context.Context) ([]StaticParam, error) {
	return m.container.Store().StaticParams(ctx)
}

// ThemeCSS returns the highlight stylesheet for the configured themes.
func (m *Module) ThemeCSS() (string, error) {
	md := m.container.Config.Markdown
	return markdown.ThemeCSS(md.LightTheme, md.DarkTheme)
}

// Generator returns the static JSON exporter configured from Config.Generator.
func (m *Module) Generator() generator.Service {
	return m.container.GeneratorService()
}

// HTTPServer builds the HTTP delivery layer configured from Config.Server.
func (m *Module) HTTPServer() *bloghttp.Server {
	cfg := m.container.Config
	return bloghttp.New(m.container.Store(),
		bloghttp.WithLogger(logging.HTTPLogger(m.container.LoggerProvider())),
		bloghttp.WithRequestTimeout(cfg.Server.RequestTimeout),
		bloghttp.WithThemes(cfg.Markdown.LightTheme, cfg.Markdown.DarkTheme),
	)
}

// Watch clears the post cache on content changes until ctx is done.
func (m *Module) Watch(ctx context.Context) error {
	return m.container.Store().Watch(ctx, m.container.Config.Content.Dir)
}

// Close releases remote connections.
func (m *Module) Close() error {
	return m.container.Close()
}

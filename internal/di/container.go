package di

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-blog/internal/cache"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/i18n"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Container wires the registry, render pipeline, cache and post store from
// one validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	registry *i18n.Registry
	renderer interfaces.MarkdownRenderer
	pipeline *markdown.Pipeline
	cache    interfaces.CacheProvider
	content  fs.FS
	store    *posts.Store

	generator generator.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the cache built from the cache config.
func WithCache(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cache = provider
	}
}

// WithRenderer replaces the markdown pipeline used by the store.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithContentFS reads posts from fsys instead of os.DirFS(Content.Dir).
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.content = fsys
	}
}

// NewContainer validates cfg and builds every service. ctx bounds the
// connection attempts of remote backends.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureRegistry(); err != nil {
		return nil, err
	}
	c.configureRenderer()
	if err := c.configureCache(ctx); err != nil {
		return nil, err
	}
	c.configureStore()
	c.configureGenerator()

	c.logger.Info("blog.container.configured",
		"languages", c.registry.Codes(),
		"default_language", c.registry.DefaultCode(),
		"content_dir", cfg.Content.Dir,
		"cache_enabled", cfg.Cache.Enabled,
		"sanitize", cfg.Markdown.Sanitize,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.RootLogger(c.loggerProvider)
	return nil
}

func (c *Container) configureRegistry() error {
	languages := make([]i18n.LanguageConfig, 0, len(c.Config.Languages))
	for _, lang := range c.Config.Languages {
		languages = append(languages, i18n.LanguageConfig{Code: lang.Code, Name: lang.Name, Flag: lang.Flag})
	}
	registry, err := i18n.NewRegistry(i18n.Config{
		DefaultLanguage: c.Config.DefaultLanguage,
		Languages:       languages,
	})
	if err != nil {
		return err
	}
	c.registry = registry
	return nil
}

func (c *Container) configureRenderer() {
	md := c.Config.Markdown
	c.pipeline = markdown.NewPipeline(
		markdown.WithRenderOptions(interfaces.RenderOptions{
			Extensions: md.Extensions,
			HardWraps:  md.HardWraps,
			Sanitize:   md.Sanitize,
			LightTheme: md.LightTheme,
			DarkTheme:  md.DarkTheme,
		}),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	if c.renderer == nil {
		c.renderer = c.pipeline
	}
}

func (c *Container) configureCache(ctx context.Context) error {
	if c.cache != nil {
		return nil
	}
	cfg := c.Config.Cache
	provider, err := cache.New(ctx, cache.Config{
		Enabled:  cfg.Enabled,
		Provider: cfg.Provider,
		TTL:      cfg.TTL,
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.Prefix,
	})
	if err != nil {
		return fmt.Errorf("blog: configure cache: %w", err)
	}
	c.cache = provider
	logging.CacheLogger(c.loggerProvider).Debug("blog.cache.configured",
		"enabled", cfg.Enabled,
		"provider", cfg.Provider,
		"ttl", cfg.TTL.String(),
	)
	return nil
}

func (c *Container) configureStore() {
	if c.content == nil {
		c.content = os.DirFS(c.Config.Content.Dir)
	}
	c.store = posts.NewStore(c.content, c.registry, c.renderer,
		posts.WithCache(c.cache, c.Config.Cache.TTL),
		posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
		posts.WithExtension(c.Config.Content.Extension),
		posts.WithConcurrency(c.Config.Content.Concurrency),
	)
}

func (c *Container) configureGenerator() {
	gen := c.Config.Generator
	c.generator = generator.NewService(generator.Config{
		OutputDir:   gen.OutputDir,
		Incremental: gen.Incremental,
		Workers:     gen.Workers,
		LightTheme:  c.Config.Markdown.LightTheme,
		DarkTheme:   c.Config.Markdown.DarkTheme,
	}, generator.Dependencies{
		Posts:  c.store,
		Logger: logging.GeneratorLogger(c.loggerProvider),
	})
}

// LoggerProvider returns the provider every module logger comes from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

func (c *Container) Registry() *i18n.Registry {
	return c.registry
}

// Pipeline returns the configured render pipeline, even when WithRenderer
// replaced it as the store's renderer.
func (c *Container) Pipeline() *markdown.Pipeline {
	return c.pipeline
}

func (c *Container) Cache() interfaces.CacheProvider {
	return c.cache
}

func (c *Container) Store() *posts.Store {
	return c.store
}

// GeneratorService returns the static JSON exporter.
func (c *Container) GeneratorService() generator.Service {
	return c.generator
}

// Close releases remote cache connections.
func (c *Container) Close() error {
	if closer, ok := c.cache.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

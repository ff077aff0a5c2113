package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const DefaultBasePath = "/blog"

// Server exposes a post store over HTTP.
type Server struct {
	store          *posts.Store
	registry       interfaces.LanguageRegistry
	logger         interfaces.Logger
	basePath       string
	requestTimeout time.Duration
	lightTheme     string
	darkTheme      string

	cssOnce sync.Once
	css     string
	cssErr  error
}

// Option customises a Server.
type Option func(*Server)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBasePath mounts the blog routes under path instead of /blog.
func WithBasePath(path string) Option {
	return func(s *Server) {
		s.basePath = joinPath(path, "")
	}
}

// WithRequestTimeout bounds every request's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithThemes selects the chroma styles served as highlight CSS.
func WithThemes(light, dark string) Option {
	return func(s *Server) {
		s.lightTheme = light
		s.darkTheme = dark
	}
}

// New builds a server over store. Languages resolve against the store's
// registry.
func New(store *posts.Store, opts ...Option) *Server {
	s := &Server{
		store:      store,
		registry:   store.Registry(),
		logger:     logging.NoOp(),
		basePath:   DefaultBasePath,
		lightTheme: markdown.DefaultLightTheme,
		darkTheme:  markdown.DefaultDarkTheme,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// App builds a fiber application with every route and middleware mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "go-blog",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(s.requestID())
	app.Use(s.requestLogger())
	app.Use(recover.New())
	app.Use(s.timeout())
	s.Register(app)
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found")
	})
	return app
}

// Register mounts the routes on router, for hosts running their own app.
func (s *Server) Register(router fiber.Router) {
	router.Get("/healthz", s.handleHealth)
	router.Get("/api/languages", s.handleLanguages)
	router.Get("/assets/highlight.css", s.handleThemeCSS)

	blog := router.Group(s.basePath)
	blog.Get("/", s.handleIndex)
	blog.Get("/:lang", s.handleList)
	blog.Get("/:lang/tags/:tag", s.handleTag)
	blog.Get("/:lang/series/:series", s.handleSeries)
	blog.Get("/:lang/:slug", s.handlePost)
}

// Listen serves on addr until ctx is done, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Listen(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	app := s.App()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listen", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()
	}
	s.logger.Info("http.shutdown")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Server) themeCSS() (string, error) {
	s.cssOnce.Do(func() {
		s.css, s.cssErr = markdown.ThemeCSS(s.lightTheme, s.darkTheme)
	})
	return s.css, s.cssErr
}

package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/markdown"
)

var ErrDefaultLanguageRequired = errors.New("blog config: default language is required")
var ErrLanguagesRequired = errors.New("blog config: at least one language is required")
var ErrDefaultLanguageNotListed = errors.New("blog config: default language must be one of the configured languages")
var ErrDuplicateLanguage = errors.New("blog config: language codes must be unique")
var ErrContentDirRequired = errors.New("blog config: content directory is required")
var ErrConcurrencyInvalid = errors.New("blog config: content concurrency must be zero or positive")
var ErrMarkdownExtensionUnknown = errors.New("blog config: markdown extension is invalid")
var ErrCacheProviderUnknown = errors.New("blog config: cache provider is invalid")
var ErrCacheRedisURLRequired = errors.New("blog config: redis url is required when the redis cache is enabled")
var ErrLoggingProviderRequired = errors.New("blog config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")
var ErrServerAddrRequired = errors.New("blog config: server address is required")
var ErrGeneratorOutputDirRequired = errors.New("blog config: generator output directory is required")
var ErrGeneratorWorkersInvalid = errors.New("blog config: generator workers must be zero or positive")

// Config aggregates everything the blog runtime needs. It is loaded from
// YAML and then overridden from BLOG_* environment variables.
type Config struct {
	DefaultLanguage string           `yaml:"default_language"`
	Languages       []LanguageConfig `yaml:"languages"`
	Content         ContentConfig    `yaml:"content"`
	Markdown        MarkdownConfig   `yaml:"markdown"`
	Cache           CacheConfig      `yaml:"cache"`
	Logging         LoggingConfig    `yaml:"logging"`
	Server          ServerConfig     `yaml:"server"`
	Generator       GeneratorConfig  `yaml:"generator"`
}

// LanguageConfig describes one supported language.
type LanguageConfig struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Flag string `yaml:"flag"`
}

// ContentConfig locates the post tree.
type ContentConfig struct {
	Dir         string `yaml:"dir"`
	Extension   string `yaml:"extension"`
	Concurrency int    `yaml:"concurrency"`
	// Watch clears the post cache when files under Dir change.
	Watch bool `yaml:"watch"`
}

// MarkdownConfig tunes the render pipeline.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	Sanitize   bool     `yaml:"sanitize"`
	LightTheme string   `yaml:"light_theme"`
	DarkTheme  string   `yaml:"dark_theme"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Provider string        `yaml:"provider"`
	TTL      time.Duration `yaml:"ttl"`
	RedisURL string        `yaml:"redis_url"`
	Prefix   string        `yaml:"prefix"`
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider string `yaml:"provider"`
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
}

// ServerConfig configures HTTP delivery.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GeneratorConfig configures the static JSON export.
type GeneratorConfig struct {
	OutputDir   string `yaml:"output_dir"`
	Incremental bool   `yaml:"incremental"`
	Workers     int    `yaml:"workers"`
}

// DefaultConfig returns the built-in English and Persian setup reading
// posts from ./content.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Languages: []LanguageConfig{
			{Code: "en", Name: "English", Flag: "🇺🇸"},
			{Code: "fa", Name: "فارسی", Flag: "🇮🇷"},
		},
		Content: ContentConfig{
			Dir:         "content",
			Extension:   ".mdx",
			Concurrency: 8,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm", "footnote", "definition_list"},
			LightTheme: "github",
			DarkTheme:  "github-dark",
		},
		Cache: CacheConfig{
			Enabled:  false,
			Provider: "memory",
			TTL:      10 * time.Minute,
			Prefix:   "blog:",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Generator: GeneratorConfig{
			OutputDir:   "dist",
			Incremental: true,
			Workers:     4,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	def := strings.TrimSpace(cfg.DefaultLanguage)
	if def == "" {
		return ErrDefaultLanguageRequired
	}
	if len(cfg.Languages) == 0 {
		return ErrLanguagesRequired
	}
	seen := map[string]struct{}{}
	for _, lang := range cfg.Languages {
		code := strings.TrimSpace(lang.Code)
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLanguage, code)
		}
		seen[code] = struct{}{}
	}
	if _, ok := seen[def]; !ok {
		return fmt.Errorf("%w: %s", ErrDefaultLanguageNotListed, def)
	}

	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Content.Concurrency < 0 {
		return ErrConcurrencyInvalid
	}

	for _, ext := range cfg.Markdown.Extensions {
		if !markdown.KnownExtension(ext) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}

	if cfg.Cache.Enabled {
		switch normalize(cfg.Cache.Provider) {
		case "", "memory":
		case "redis":
			if strings.TrimSpace(cfg.Cache.RedisURL) == "" {
				return ErrCacheRedisURLRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, cfg.Cache.Provider)
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider != "console" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}
	if cfg.Generator.Workers < 0 {
		return ErrGeneratorWorkersInvalid
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zerolog":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

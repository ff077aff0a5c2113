package bootstrap

import (
	"context"
	"fmt"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options captures CLI overrides applied on top of the loaded configuration.
type Options struct {
	ConfigPath      string
	ContentDir      string
	DefaultLanguage string
	Languages       []string
	OutputDir       string
	LogLevel        string
	LoggerProvider  interfaces.LoggerProvider
}

// Module wraps the blog module and the logger CLI commands report through.
type Module struct {
	Module *blog.Module
	Logger interfaces.Logger
}

// BuildModule loads the configuration, applies opts and constructs the blog
// module.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	cfg, err := blog.LoadConfig(strings.TrimSpace(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	Apply(&cfg, opts)

	var moduleOpts []blog.Option
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, blog.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := blog.New(ctx, cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "blog.cli"),
	}, nil
}

// Apply copies the non-empty overrides in opts onto cfg.
func Apply(cfg *blog.Config, opts Options) {
	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if out := strings.TrimSpace(opts.OutputDir); out != "" {
		cfg.Generator.OutputDir = out
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if len(opts.Languages) > 0 {
		languages := make([]blog.LanguageConfig, 0, len(opts.Languages))
		for _, code := range opts.Languages {
			lang := blog.LanguageConfig{Code: code}
			for _, known := range cfg.Languages {
				if known.Code == code {
					lang = known
					break
				}
			}
			languages = append(languages, lang)
		}
		cfg.Languages = languages
	}
	if def := strings.TrimSpace(opts.DefaultLanguage); def != "" {
		cfg.DefaultLanguage = def
	}
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

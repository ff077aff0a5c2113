package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/logging/zerolog"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{Level: cfg.Level, Format: cfg.Format})
	case "zerolog":
		return zerolog.NewProvider(zerolog.Config{Level: cfg.Level, Format: cfg.Format})
	default:
		return nil, fmt.Errorf("blog: unknown logging provider %q", cfg.Provider)
	}
}

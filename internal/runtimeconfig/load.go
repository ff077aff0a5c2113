package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BLOG_"

// Load reads a YAML file over DefaultConfig. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("blog config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("blog config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are ignored; existing variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blog config: load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from BLOG_* variables read through lookup,
// normally os.LookupEnv.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}

	env.str("DEFAULT_LANGUAGE", &cfg.DefaultLanguage)
	if codes, ok := env.get("LANGUAGES"); ok {
		cfg.Languages = mergeLanguages(cfg.Languages, codes)
	}
	env.str("CONTENT_DIR", &cfg.Content.Dir)
	env.str("CONTENT_EXTENSION", &cfg.Content.Extension)
	env.integer("CONTENT_CONCURRENCY", &cfg.Content.Concurrency)
	env.boolean("CONTENT_WATCH", &cfg.Content.Watch)
	if exts, ok := env.get("MARKDOWN_EXTENSIONS"); ok {
		cfg.Markdown.Extensions = splitList(exts)
	}
	env.boolean("MARKDOWN_HARD_WRAPS", &cfg.Markdown.HardWraps)
	env.boolean("MARKDOWN_SANITIZE", &cfg.Markdown.Sanitize)
	env.str("MARKDOWN_LIGHT_THEME", &cfg.Markdown.LightTheme)
	env.str("MARKDOWN_DARK_THEME", &cfg.Markdown.DarkTheme)
	env.boolean("CACHE_ENABLED", &cfg.Cache.Enabled)
	env.str("CACHE_PROVIDER", &cfg.Cache.Provider)
	env.duration("CACHE_TTL", &cfg.Cache.TTL)
	env.str("REDIS_URL", &cfg.Cache.RedisURL)
	env.str("CACHE_PREFIX", &cfg.Cache.Prefix)
	env.str("LOG_PROVIDER", &cfg.Logging.Provider)
	env.str("LOG_LEVEL", &cfg.Logging.Level)
	env.str("LOG_FORMAT", &cfg.Logging.Format)
	env.str("ADDR", &cfg.Server.Addr)
	env.duration("REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	env.str("OUTPUT_DIR", &cfg.Generator.OutputDir)
	env.boolean("GENERATOR_INCREMENTAL", &cfg.Generator.Incremental)
	env.integer("GENERATOR_WORKERS", &cfg.Generator.Workers)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	value, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (e *envReader) str(key string, dst *string) {
	if value, ok := e.get(key); ok {
		*dst = value
	}
}

func (e *envReader) integer(key string, dst *int) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("blog config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = n
}

func (e *envReader) boolean(key string, dst *bool) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("blog config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("blog config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = d
}

// mergeLanguages keeps names and flags of languages already configured and
// adds bare entries for new codes.
func mergeLanguages(current []LanguageConfig, codes string) []LanguageConfig {
	known := make(map[string]LanguageConfig, len(current))
	for _, lang := range current {
		known[lang.Code] = lang
	}
	var out []LanguageConfig
	for _, code := range splitList(codes) {
		if lang, ok := known[code]; ok {
			out = append(out, lang)
			continue
		}
		out = append(out, LanguageConfig{Code: code})
	}
	return out
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"missing default", func(c *runtimeconfig.Config) { c.DefaultLanguage = " " }, runtimeconfig.ErrDefaultLanguageRequired},
		{"no languages", func(c *runtimeconfig.Config) { c.Languages = nil }, runtimeconfig.ErrLanguagesRequired},
		{"default not listed", func(c *runtimeconfig.Config) { c.DefaultLanguage = "de" }, runtimeconfig.ErrDefaultLanguageNotListed},
		{"duplicate language", func(c *runtimeconfig.Config) {
			c.Languages = append(c.Languages, runtimeconfig.LanguageConfig{Code: "en"})
		}, runtimeconfig.ErrDuplicateLanguage},
		{"missing content dir", func(c *runtimeconfig.Config) { c.Content.Dir = "" }, runtimeconfig.ErrContentDirRequired},
		{"negative concurrency", func(c *runtimeconfig.Config) { c.Content.Concurrency = -1 }, runtimeconfig.ErrConcurrencyInvalid},
		{"unknown extension", func(c *runtimeconfig.Config) { c.Markdown.Extensions = []string{"mermaid"} }, runtimeconfig.ErrMarkdownExtensionUnknown},
		{"unknown cache", func(c *runtimeconfig.Config) {
			c.Cache.Enabled = true
			c.Cache.Provider = "memcached"
		}, runtimeconfig.ErrCacheProviderUnknown},
		{"redis without url", func(c *runtimeconfig.Config) {
			c.Cache.Enabled = true
			c.Cache.Provider = "redis"
		}, runtimeconfig.ErrCacheRedisURLRequired},
		{"missing logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, runtimeconfig.ErrLoggingProviderRequired},
		{"unknown logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "logrus" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"invalid level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"invalid format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "zerolog"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
		{"missing addr", func(c *runtimeconfig.Config) { c.Server.Addr = "" }, runtimeconfig.ErrServerAddrRequired},
		{"missing output dir", func(c *runtimeconfig.Config) { c.Generator.OutputDir = " " }, runtimeconfig.ErrGeneratorOutputDirRequired},
		{"negative workers", func(c *runtimeconfig.Config) { c.Generator.Workers = -1 }, runtimeconfig.ErrGeneratorWorkersInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateIgnoresFormatForConsole(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "anything"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.yaml")
	data := `
default_language: fa
content:
  dir: posts
  watch: true
cache:
  enabled: true
  ttl: 30s
logging:
  provider: zerolog
  format: json
server:
  request_timeout: 2s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != "fa" || cfg.Content.Dir != "posts" || !cfg.Content.Watch {
		t.Fatalf("unexpected content config %+v", cfg)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 30*time.Second || cfg.Cache.Provider != "memory" {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Server.RequestTimeout != 2*time.Second || cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if len(cfg.Languages) != 2 || cfg.Content.Extension != ".mdx" {
		t.Fatal("defaults should survive a partial file")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("content: [oops"), 0o644)
	if _, err := runtimeconfig.Load(path); err == nil {
		t.Fatal("expected parse error")
	}

	cfg, err := runtimeconfig.Load("")
	if err != nil || cfg.DefaultLanguage != "en" {
		t.Fatalf("empty path should return defaults, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BLOG_LANGUAGES":           "fa, en, de",
		"BLOG_CONTENT_DIR":         "/srv/content",
		"BLOG_CONTENT_CONCURRENCY": "2",
		"BLOG_MARKDOWN_SANITIZE":   "true",
		"BLOG_CACHE_TTL":           "1m",
		"BLOG_LOG_LEVEL":           "debug",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if len(cfg.Languages) != 3 || cfg.Languages[0].Name != "فارسی" || cfg.Languages[2].Code != "de" {
		t.Fatalf("unexpected languages %+v", cfg.Languages)
	}
	if cfg.Content.Dir != "/srv/content" || cfg.Content.Concurrency != 2 {
		t.Fatalf("unexpected content %+v", cfg.Content)
	}
	if !cfg.Markdown.Sanitize || cfg.Cache.TTL != time.Minute || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	env := map[string]string{
		"BLOG_CONTENT_WATCH":   "sometimes",
		"BLOG_REQUEST_TIMEOUT": "soon",
		"BLOG_CONTENT_DIR":     "kept",
	}
	cfg := runtimeconfig.DefaultConfig()
	err := cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err == nil {
		t.Fatal("expected parse errors")
	}
	if cfg.Content.Dir != "kept" {
		t.Fatal("valid overrides should still apply")
	}
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	if err := runtimeconfig.LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
}

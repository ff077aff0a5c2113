package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrDefaultLanguageRequired    = runtimeconfig.ErrDefaultLanguageRequired
	ErrLanguagesRequired          = runtimeconfig.ErrLanguagesRequired
	ErrDefaultLanguageNotListed   = runtimeconfig.ErrDefaultLanguageNotListed
	ErrDuplicateLanguage          = runtimeconfig.ErrDuplicateLanguage
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrConcurrencyInvalid         = runtimeconfig.ErrConcurrencyInvalid
	ErrMarkdownExtensionUnknown   = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrCacheProviderUnknown       = runtimeconfig.ErrCacheProviderUnknown
	ErrCacheRedisURLRequired      = runtimeconfig.ErrCacheRedisURLRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrServerAddrRequired         = runtimeconfig.ErrServerAddrRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratorWorkersInvalid    = runtimeconfig.ErrGeneratorWorkersInvalid
)

type (
	Config          = runtimeconfig.Config
	LanguageConfig  = runtimeconfig.LanguageConfig
	ContentConfig   = runtimeconfig.ContentConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	CacheConfig     = runtimeconfig.CacheConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	ServerConfig    = runtimeconfig.ServerConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over the defaults, loads .env and applies
// BLOG_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := runtimeconfig.LoadDotEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return cfg, err
	}
	return cfg, nil
}

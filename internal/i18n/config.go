package i18n

// LanguageConfig declares one supported language.
type LanguageConfig struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	Flag string `yaml:"flag" json:"flag"`
}

// Config lists the supported languages and the default one.
type Config struct {
	DefaultLanguage string           `yaml:"default_language" json:"default_language"`
	Languages       []LanguageConfig `yaml:"languages" json:"languages"`
}

// DefaultConfig returns the stock English and Persian table with English as
// the default.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Languages: []LanguageConfig{
			{Code: "en", Name: "English", Flag: "🇺🇸"},
			{Code: "fa", Name: "فارسی", Flag: "🇮🇷"},
		},
	}
}

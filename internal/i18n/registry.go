package i18n

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrNoLanguages             = errors.New("i18n: at least one language is required")
	ErrEmptyLanguageCode       = errors.New("i18n: language code is required")
	ErrDuplicateLanguage       = errors.New("i18n: duplicate language code")
	ErrDefaultLanguageUnknown  = errors.New("i18n: default language is not registered")
	ErrDefaultLanguageRequired = errors.New("i18n: default language is required")
)

var rightToLeftScripts = []language.Script{
	language.MustParseScript("Arab"),
	language.MustParseScript("Hebr"),
	language.MustParseScript("Thaa"),
	language.MustParseScript("Syrc"),
	language.MustParseScript("Nkoo"),
	language.MustParseScript("Adlm"),
}

var rightToLeftBases = map[string]struct{}{
	"ar": {}, "fa": {}, "he": {}, "ur": {}, "ps": {},
	"dv": {}, "yi": {}, "sd": {}, "ug": {}, "ckb": {},
}

// Registry is an immutable table of supported languages.
type Registry struct {
	languages []interfaces.Language
	index     map[string]int
	def       int
}

var _ interfaces.LanguageRegistry = (*Registry)(nil)

// NewRegistry validates cfg and builds the lookup table. Codes must be unique
// and the default must be one of them.
func NewRegistry(cfg Config) (*Registry, error) {
	if len(cfg.Languages) == 0 {
		return nil, ErrNoLanguages
	}
	def := strings.TrimSpace(cfg.DefaultLanguage)
	if def == "" {
		return nil, ErrDefaultLanguageRequired
	}

	r := &Registry{
		languages: make([]interfaces.Language, 0, len(cfg.Languages)),
		index:     make(map[string]int, len(cfg.Languages)),
		def:       -1,
	}
	for _, lc := range cfg.Languages {
		code := strings.TrimSpace(lc.Code)
		if code == "" {
			return nil, ErrEmptyLanguageCode
		}
		if _, exists := r.index[code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLanguage, code)
		}
		name := strings.TrimSpace(lc.Name)
		if name == "" {
			name = code
		}
		r.index[code] = len(r.languages)
		r.languages = append(r.languages, interfaces.Language{
			Code:          code,
			Name:          name,
			Flag:          lc.Flag,
			IsDefault:     code == def,
			IsRightToLeft: rightToLeft(code),
		})
	}

	pos, ok := r.index[def]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDefaultLanguageUnknown, def)
	}
	r.def = pos
	return r, nil
}

// MustRegistry is NewRegistry that panics on invalid configuration.
func MustRegistry(cfg Config) *Registry {
	r, err := NewRegistry(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

// IsValid reports whether code names a registered language.
func (r *Registry) IsValid(code string) bool {
	_, ok := r.index[strings.TrimSpace(code)]
	return ok
}

// IsRightToLeft reports directionality. Unknown codes are left to right.
func (r *Registry) IsRightToLeft(code string) bool {
	lang, ok := r.Lookup(code)
	return ok && lang.IsRightToLeft
}

// Direction returns "rtl" or "ltr" for use in a dir attribute.
func (r *Registry) Direction(code string) string {
	if r.IsRightToLeft(code) {
		return "rtl"
	}
	return "ltr"
}

func (r *Registry) Default() interfaces.Language {
	return r.languages[r.def]
}

func (r *Registry) DefaultCode() string {
	return r.languages[r.def].Code
}

// Resolve returns code when it is registered and the default code otherwise.
func (r *Registry) Resolve(code string) string {
	if lang, ok := r.Lookup(code); ok {
		return lang.Code
	}
	return r.DefaultCode()
}

func (r *Registry) Lookup(code string) (interfaces.Language, bool) {
	pos, ok := r.index[strings.TrimSpace(code)]
	if !ok {
		return interfaces.Language{}, false
	}
	return r.languages[pos], true
}

// Languages returns the registered languages in configuration order.
func (r *Registry) Languages() []interfaces.Language {
	return slices.Clone(r.languages)
}

func (r *Registry) Codes() []string {
	codes := make([]string, len(r.languages))
	for i, lang := range r.languages {
		codes[i] = lang.Code
	}
	return codes
}

func rightToLeft(code string) bool {
	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	if _, ok := rightToLeftBases[base.String()]; ok {
		return true
	}
	script, confidence := tag.Script()
	if confidence == language.No {
		return false
	}
	return slices.Contains(rightToLeftScripts, script)
}

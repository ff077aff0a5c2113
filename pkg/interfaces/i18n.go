package interfaces

// Language describes one supported content language.
type Language struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Flag          string `json:"flag,omitempty"`
	IsDefault     bool   `json:"is_default"`
	IsRightToLeft bool   `json:"is_rtl"`
}

// LanguageRegistry answers validity and directionality questions for
// language codes. Lookups are pure and never fail.
type LanguageRegistry interface {
	IsValid(code string) bool
	IsRightToLeft(code string) bool
	Direction(code string) string
	Default() Language
	Resolve(code string) string
	Languages() []Language
}

package interfaces

import "context"

// MarkdownRenderer converts a markdown body into an HTML string. Implementations
// must be deterministic: identical input yields byte identical output.
type MarkdownRenderer interface {
	Render(ctx context.Context, body []byte) (string, error)
}

// RenderOptions customises how markdown bodies are turned into HTML. Option
// names stay readable for configuration unmarshalling and CLI flags.
type RenderOptions struct {
	Extensions []string
	HardWraps  bool
	Sanitize   bool
	LightTheme string
	DarkTheme  string
}

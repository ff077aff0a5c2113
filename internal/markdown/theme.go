package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	DefaultLightTheme = "github"
	DefaultDarkTheme  = "github-dark"
)

// WriteThemeCSS writes the stylesheet for highlighted code blocks: the light
// theme at top level and the dark theme inside a prefers-color-scheme media
// query. Background colours are removed from both so the page controls them.
// Unknown theme names fall back to chroma's default style.
func WriteThemeCSS(w io.Writer, light, dark string) error {
	if strings.TrimSpace(light) == "" {
		light = DefaultLightTheme
	}
	if strings.TrimSpace(dark) == "" {
		dark = DefaultDarkTheme
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))

	lightStyle, err := withoutBackground(styles.Get(light))
	if err != nil {
		return fmt.Errorf("theme %s: %w", light, err)
	}
	darkStyle, err := withoutBackground(styles.Get(dark))
	if err != nil {
		return fmt.Errorf("theme %s: %w", dark, err)
	}

	if err := formatter.WriteCSS(w, lightStyle); err != nil {
		return fmt.Errorf("write light theme: %w", err)
	}

	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, darkStyle); err != nil {
		return fmt.Errorf("write dark theme: %w", err)
	}
	if _, err := io.WriteString(w, "@media (prefers-color-scheme: dark) {\n"); err != nil {
		return err
	}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		if _, err := fmt.Fprintf(w, "  %s\n", scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "}\n")
	return err
}

// ThemeCSS is WriteThemeCSS into a string.
func ThemeCSS(light, dark string) (string, error) {
	var b strings.Builder
	if err := WriteThemeCSS(&b, light, dark); err != nil {
		return "", err
	}
	return b.String(), nil
}

// withoutBackground flattens style into a parentless copy with every
// background colour cleared. Entries left empty are marked noinherit so
// chroma neither inherits nor synthesises a background for them.
func withoutBackground(style *chroma.Style) (*chroma.Style, error) {
	builder := chroma.NewStyleBuilder(style.Name)
	types := append(style.Types(), chroma.Background, chroma.LineHighlight)
	for _, tt := range types {
		entry := style.Get(tt)
		entry.Background = 0
		if entry.IsZero() {
			entry.NoInherit = true
		}
		builder.AddEntry(tt, entry)
	}
	return builder.Build()
}

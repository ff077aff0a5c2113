package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":             extension.GFM,
	"table":           extension.Table,
	"tables":          extension.Table,
	"strikethrough":   extension.Strikethrough,
	"linkify":         extension.Linkify,
	"autolink":        extension.Linkify,
	"tasklist":        extension.TaskList,
	"definition":      extension.DefinitionList,
	"definition_list": extension.DefinitionList,
	"footnote":        extension.Footnote,
}

// KnownExtension reports whether name selects a goldmark extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// newEngine builds the goldmark instance shared by the parse and HTML tree
// stages. Raw HTML is always emitted; scrubbing is the sanitize stage's job.
func newEngine(opts interfaces.RenderOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{html.WithUnsafe()}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	return goldmark.New(
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Footnote, extension.DefinitionList}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}
	return extenders
}

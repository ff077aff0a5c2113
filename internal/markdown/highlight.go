package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	languageClassPrefix = "language-"
	// HighlightClass marks highlighted pre elements; theme CSS is scoped to it.
	HighlightClass = "chroma"
)

// HighlightStage tokenises fenced code blocks with chroma and replaces their
// text with class based token spans. A block whose language is unknown, or
// whose tokenising fails, is left as plain code and logged.
func HighlightStage(logger interfaces.Logger) Stage {
	if logger == nil {
		logger = logging.NoOp()
	}
	h := &highlighter{
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true)),
		style:     styles.Fallback,
		logger:    logger,
	}
	return Stage{
		Name: StageHighlight,
		Run: func(ctx context.Context, tree *Tree) (*Tree, error) {
			if tree.Root == nil {
				return tree, nil
			}
			for _, block := range findCodeBlocks(tree.Root) {
				h.highlight(ctx, block)
			}
			tree.Serialized = false
			return tree, nil
		},
	}
}

type highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
	logger    interfaces.Logger
}

type codeBlock struct {
	pre      *html.Node
	code     *html.Node
	language string
}

func (h *highlighter) highlight(ctx context.Context, block codeBlock) {
	if block.language == "" {
		return
	}

	lexer := lexers.Get(block.language)
	if lexer == nil {
		h.logger.WithContext(ctx).Warn("markdown.highlight.unknown_language", "language", block.language)
		return
	}

	nodes, err := h.tokenise(chroma.Coalesce(lexer), textContent(block.code), block.code)
	if err != nil {
		h.logger.WithContext(ctx).Warn("markdown.highlight.degraded", "language", block.language, "error", err)
		return
	}

	for child := block.code.FirstChild; child != nil; {
		next := child.NextSibling
		block.code.RemoveChild(child)
		child = next
	}
	for _, node := range nodes {
		block.code.AppendChild(node)
	}
	addClass(block.pre, HighlightClass)
	setAttr(block.pre, "data-language", block.language)
}

func (h *highlighter) tokenise(lexer chroma.Lexer, source string, parent *html.Node) (nodes []*html.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lexer panic: %v", r)
		}
	}()

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, fmt.Errorf("tokenise: %w", err)
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	nodes, err = html.ParseFragment(&buf, parent)
	if err != nil {
		return nil, fmt.Errorf("parse highlighted fragment: %w", err)
	}
	return nodes, nil
}

// findCodeBlocks returns every pre element whose first element child is a
// code element, in document order.
func findCodeBlocks(root *html.Node) []codeBlock {
	var blocks []codeBlock
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
			if code := firstElementChild(n); code != nil && code.DataAtom == atom.Code {
				blocks = append(blocks, codeBlock{pre: n, code: code, language: codeLanguage(code)})
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return blocks
}

func codeLanguage(code *html.Node) string {
	for _, class := range strings.Fields(attr(code, "class")) {
		if lang, ok := strings.CutPrefix(class, languageClassPrefix); ok {
			return lang
		}
	}
	return ""
}

func firstElementChild(n *html.Node) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return child
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func addClass(n *html.Node, class string) {
	existing := strings.Fields(attr(n, "class"))
	for _, c := range existing {
		if c == class {
			return
		}
	}
	setAttr(n, "class", strings.Join(append(existing, class), " "))
}

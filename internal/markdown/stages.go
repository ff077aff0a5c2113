package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	StageParse     = "parse"
	StageHTMLTree  = "html-tree"
	StageSanitize  = "sanitize"
	StageHighlight = "highlight"
	StageSerialize = "serialize"
)

var errNoDocument = errors.New("tree has no markdown document")

// ParseStage parses Source into a goldmark AST.
func ParseStage(engine goldmark.Markdown) Stage {
	return Stage{
		Name: StageParse,
		Run: func(_ context.Context, tree *Tree) (*Tree, error) {
			tree.Document = engine.Parser().Parse(text.NewReader(tree.Source))
			return tree, nil
		},
	}
}

// HTMLTreeStage renders the AST with raw HTML passthrough and reparses the
// result into an HTML node tree.
func HTMLTreeStage(engine goldmark.Markdown) Stage {
	return Stage{
		Name: StageHTMLTree,
		Run: func(_ context.Context, tree *Tree) (*Tree, error) {
			if tree.Document == nil {
				return nil, errNoDocument
			}
			var buf bytes.Buffer
			if err := engine.Renderer().Render(&buf, tree.Source, tree.Document); err != nil {
				return nil, fmt.Errorf("render html: %w", err)
			}
			root, err := parseBody(&buf)
			if err != nil {
				return nil, err
			}
			tree.Root = root
			tree.Serialized = false
			return tree, nil
		},
	}
}

var codeLanguageClass = regexp.MustCompile(`^language-[\w+#.-]+$`)

// NewSanitizePolicy returns the UGC policy extended to keep code language
// classes and data attributes.
func NewSanitizePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(codeLanguageClass).OnElements("code")
	policy.AllowDataAttributes()
	return policy
}

// SanitizeStage scrubs the HTML tree with policy.
func SanitizeStage(policy *bluemonday.Policy) Stage {
	return Stage{
		Name: StageSanitize,
		Run: func(_ context.Context, tree *Tree) (*Tree, error) {
			raw, err := Serialize(tree)
			if err != nil {
				return nil, err
			}
			root, err := parseBody(strings.NewReader(policy.Sanitize(raw)))
			if err != nil {
				return nil, err
			}
			tree.Root = root
			tree.Serialized = false
			return tree, nil
		},
	}
}

// SerializeStage renders Root into Output.
func SerializeStage() Stage {
	return Stage{
		Name: StageSerialize,
		Run: func(_ context.Context, tree *Tree) (*Tree, error) {
			out, err := Serialize(tree)
			if err != nil {
				return nil, err
			}
			tree.Output = out
			tree.Serialized = true
			return tree, nil
		},
	}
}

// Serialize renders the children of tree.Root as an HTML string.
func Serialize(tree *Tree) (string, error) {
	if tree == nil || tree.Root == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for child := tree.Root.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", fmt.Errorf("serialize html: %w", err)
		}
	}
	return buf.String(), nil
}

func newBody() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func parseBody(r io.Reader) (*html.Node, error) {
	body := newBody()
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	for _, node := range nodes {
		body.AppendChild(node)
	}
	return body, nil
}

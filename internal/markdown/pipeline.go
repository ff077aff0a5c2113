package markdown

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/net/html"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Tree is the document as it flows through the pipeline. Source and Document
// hold the markdown input and its goldmark AST. Root is the HTML tree, a
// synthetic body element whose children are the rendered fragment. Output is
// filled by the serialize stage.
type Tree struct {
	Source   []byte
	Document ast.Node
	Root     *html.Node
	Output   string
	// Serialized is set once Output reflects the current Root.
	Serialized bool
}

// StageFunc transforms a tree. Stages own the tree they receive and may
// modify it in place before returning it.
type StageFunc func(ctx context.Context, tree *Tree) (*Tree, error)

// Stage is a named pipeline step.
type Stage struct {
	Name string
	Run  StageFunc
}

// Pipeline runs its stages in order.
type Pipeline struct {
	stages []Stage
	logger interfaces.Logger
}

var _ interfaces.MarkdownRenderer = (*Pipeline)(nil)

// Option customises pipeline construction.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	render interfaces.RenderOptions
	logger interfaces.Logger
	stages []Stage
}

// WithRenderOptions sets extensions, hard wraps, sanitizing and themes.
func WithRenderOptions(opts interfaces.RenderOptions) Option {
	return func(cfg *pipelineConfig) {
		cfg.render = opts
	}
}

// WithLogger sets the logger used for stage diagnostics and degraded code blocks.
func WithLogger(logger interfaces.Logger) Option {
	return func(cfg *pipelineConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithStages replaces the default stage list entirely.
func WithStages(stages ...Stage) Option {
	return func(cfg *pipelineConfig) {
		cfg.stages = append([]Stage(nil), stages...)
	}
}

// NewPipeline builds the default pipeline: parse, html-tree, sanitize when
// enabled, highlight and serialize.
func NewPipeline(opts ...Option) *Pipeline {
	cfg := pipelineConfig{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&cfg)
	}

	stages := cfg.stages
	if stages == nil {
		stages = DefaultStages(cfg.render, cfg.logger)
	}

	return &Pipeline{stages: stages, logger: cfg.logger}
}

// DefaultStages returns the standard stage list for opts.
func DefaultStages(opts interfaces.RenderOptions, logger interfaces.Logger) []Stage {
	engine := newEngine(opts)
	stages := []Stage{
		ParseStage(engine),
		HTMLTreeStage(engine),
	}
	if opts.Sanitize {
		stages = append(stages, SanitizeStage(NewSanitizePolicy()))
	}
	return append(stages, HighlightStage(logger), SerializeStage())
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name
	}
	return names
}

// Transform runs every stage on a fresh tree built from body.
func (p *Pipeline) Transform(ctx context.Context, body []byte) (*Tree, error) {
	tree := &Tree{Source: body}
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := stage.Run(ctx, tree)
		if err != nil {
			return nil, fmt.Errorf("markdown stage %s: %w", stage.Name, err)
		}
		if next == nil {
			return nil, fmt.Errorf("markdown stage %s: returned nil tree", stage.Name)
		}
		tree = next
	}
	return tree, nil
}

// Render runs the pipeline and returns the serialized HTML. Custom stage lists
// without a serialize stage are serialized after the last stage.
func (p *Pipeline) Render(ctx context.Context, body []byte) (string, error) {
	tree, err := p.Transform(ctx, body)
	if err != nil {
		return "", err
	}
	if tree.Serialized {
		return tree.Output, nil
	}
	return Serialize(tree)
}

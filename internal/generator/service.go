package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator has no output directory.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errPostsRequired    = errors.New("generator: post source is required")
	errOutputDirMissing = errors.New("generator: output directory is required")
)

const defaultWorkers = 4

// Service describes the static export contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir string
	// Incremental skips posts whose output is unchanged since the last build.
	Incremental bool
	Workers     int
	LightTheme  string
	DarkTheme   string
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	Languages []string
	DryRun    bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PostsBuilt   int
	PostsSkipped int
	IndexesBuilt int
	Languages    []string
	Outputs      []string
	Duration     time.Duration
	Errors       []error
	DryRun       bool
}

// PostSource is the slice of the post store the generator reads from.
type PostSource interface {
	ListPosts(ctx context.Context, language string) ([]*interfaces.Post, error)
	Registry() interfaces.LanguageRegistry
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Posts  PostSource
	Logger interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

type disabledService struct{}

type listingPost struct {
	Slug     string                  `json:"slug"`
	Metadata interfaces.PostMetadata `json:"metadata"`
}

type listingDocument struct {
	Language string        `json:"language"`
	Dir      string        `json:"dir"`
	Tags     []string      `json:"tags,omitempty"`
	Posts    []listingPost `json:"posts"`
}

type postDocument struct {
	Language string           `json:"language"`
	Dir      string           `json:"dir"`
	Post     *interfaces.Post `json:"post"`
}

type languageDocument struct {
	interfaces.Language
	Dir string `json:"dir"`
}

type languagesDocument struct {
	Default   string             `json:"default"`
	Languages []languageDocument `json:"languages"`
}

// exportPost pairs a post with the route language it is exported under.
type exportPost struct {
	language string
	post     *interfaces.Post
}

// Build exports every (slug, language) route as JSON, one index per
// language, the language list and the highlight stylesheet. Per-file
// failures are collected and do not stop the build.
func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Posts == nil {
		return nil, errPostsRequired
	}
	if strings.TrimSpace(s.cfg.OutputDir) == "" {
		return nil, errOutputDirMissing
	}

	start := s.now()
	logger := s.deps.Logger.WithContext(ctx)
	registry := s.deps.Posts.Registry()
	languages := s.selectLanguages(registry, opts.Languages)

	result := &BuildResult{Languages: languages, DryRun: opts.DryRun}

	var writer artifactWriter = newArtifactWriter(s.cfg.OutputDir)
	if opts.DryRun {
		writer = dryRunWriter{artifactWriter: writer}
	}

	var (
		mu          sync.Mutex
		errorsSlice []error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errorsSlice = append(errorsSlice, err)
	}
	record := func(output string, skipped bool) {
		mu.Lock()
		defer mu.Unlock()
		if skipped {
			result.PostsSkipped++
			return
		}
		result.PostsBuilt++
		result.Outputs = append(result.Outputs, output)
	}

	manifest := newBuildManifest()
	if s.cfg.Incremental {
		loaded, err := s.loadManifest(ctx, writer)
		if err != nil {
			logger.Warn("generator.manifest.unreadable", "error", err)
		} else if loaded != nil {
			manifest = loaded
		}
	}

	exports, err := s.collect(ctx, registry, languages)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(exports))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers())
	for _, export := range exports {
		keys[postKey(export.language, export.post.Slug)] = struct{}{}
		group.Go(func() error {
			output, skipped, err := s.writePost(gctx, writer, manifest, &mu, registry, export)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.WithPostContext(logger, export.post.Slug, export.language, output).
					Error("generator.post.failed", "error", err)
				fail(err)
				return nil
			}
			record(output, skipped)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, lang := range languages {
		output, err := s.writeIndex(ctx, writer, registry, lang)
		if err != nil {
			fail(err)
			continue
		}
		result.IndexesBuilt++
		result.Outputs = append(result.Outputs, output)
	}

	if err := s.writeJSON(ctx, writer, languagesFile, categoryLanguages, "", languagesPayload(registry)); err != nil {
		fail(err)
	} else {
		result.Outputs = append(result.Outputs, languagesFile)
	}

	if err := s.writeThemeCSS(ctx, writer); err != nil {
		fail(err)
	} else {
		result.Outputs = append(result.Outputs, highlightFile)
	}

	if s.cfg.Incremental && len(errorsSlice) == 0 && len(opts.Languages) == 0 {
		manifest.prunePosts(keys)
		manifest.GeneratedAt = start
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			fail(err)
		}
	}

	sort.Strings(result.Outputs)
	result.Duration = s.now().Sub(start)

	logger.Info("generator.build.completed",
		"posts_built", result.PostsBuilt,
		"posts_skipped", result.PostsSkipped,
		"indexes", result.IndexesBuilt,
		"dry_run", opts.DryRun,
		"errors", len(errorsSlice),
	)

	if len(errorsSlice) > 0 {
		result.Errors = errorsSlice
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// collect lists the posts of every selected language directory under their
// route language. The route language is the post's declared language, so a
// post may be exported under a language other than its directory. Repeated
// routes keep their first occurrence. Posts declaring an unregistered
// language have no route and are skipped with a warning.
func (s *service) collect(ctx context.Context, registry interfaces.LanguageRegistry, languages []string) ([]exportPost, error) {
	var exports []exportPost
	seen := map[string]struct{}{}
	for _, lang := range registry.Languages() {
		list, err := s.deps.Posts.ListPosts(ctx, lang.Code)
		if err != nil {
			return nil, err
		}
		for _, post := range list {
			route := post.Metadata.Language
			if !registry.IsValid(route) {
				logging.WithPostContext(s.deps.Logger.WithContext(ctx), post.Slug, route, "").
					Warn("generator.post.unregistered_language", "directory", lang.Code)
				continue
			}
			if !slices.Contains(languages, route) {
				continue
			}
			key := postKey(route, post.Slug)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			exports = append(exports, exportPost{language: route, post: post})
		}
	}
	return exports, nil
}

func (s *service) writePost(
	ctx context.Context,
	writer artifactWriter,
	manifest *buildManifest,
	mu *sync.Mutex,
	registry interfaces.LanguageRegistry,
	export exportPost,
) (string, bool, error) {
	output := postOutputPath(export.language, export.post.Slug)
	data, err := encode(postDocument{
		Language: export.language,
		Dir:      registry.Direction(export.language),
		Post:     export.post,
	})
	if err != nil {
		return output, false, err
	}
	checksum := computeHash(data)

	mu.Lock()
	skip := s.cfg.Incremental && manifest.shouldSkipPost(export.language, export.post.Slug, checksum, output)
	mu.Unlock()
	if skip && writer.Exists(ctx, output) {
		return output, true, nil
	}

	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:     output,
		Content:  data,
		Language: export.language,
		Category: categoryPost,
	}); err != nil {
		return output, false, err
	}

	mu.Lock()
	manifest.setPost(manifestPost{
		Slug:      export.post.Slug,
		Language:  export.language,
		Output:    output,
		Checksum:  checksum,
		WrittenAt: s.now(),
	})
	mu.Unlock()
	return output, false, nil
}

func (s *service) writeIndex(ctx context.Context, writer artifactWriter, registry interfaces.LanguageRegistry, lang string) (string, error) {
	list, err := s.deps.Posts.ListPosts(ctx, lang)
	if err != nil {
		return "", err
	}
	public := posts.FilterPublic(list)
	posts.SortByPublishedDesc(public)

	doc := listingDocument{
		Language: lang,
		Dir:      registry.Direction(lang),
		Tags:     posts.Tags(public),
		Posts:    make([]listingPost, len(public)),
	}
	for i, post := range public {
		doc.Posts[i] = listingPost{Slug: post.Slug, Metadata: post.Metadata}
	}
	output := indexOutputPath(lang)
	return output, s.writeJSON(ctx, writer, output, categoryIndex, lang, doc)
}

func (s *service) writeJSON(ctx context.Context, writer artifactWriter, output string, category writeCategory, lang string, payload any) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}
	return writer.WriteFile(ctx, writeFileRequest{Path: output, Content: data, Language: lang, Category: category})
}

func (s *service) writeThemeCSS(ctx context.Context, writer artifactWriter) error {
	css, err := markdown.ThemeCSS(s.cfg.LightTheme, s.cfg.DarkTheme)
	if err != nil {
		return fmt.Errorf("generator: theme css: %w", err)
	}
	return writer.WriteFile(ctx, writeFileRequest{Path: highlightFile, Content: []byte(css), Category: categoryAsset})
}

func (s *service) loadManifest(ctx context.Context, writer artifactWriter) (*buildManifest, error) {
	if !writer.Exists(ctx, manifestFileName) {
		return nil, nil
	}
	data, err := writer.ReadFile(ctx, manifestFileName)
	if err != nil {
		return nil, err
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	return writer.WriteFile(ctx, writeFileRequest{Path: manifestFileName, Content: data, Category: categoryManifest})
}

// Clean removes everything a build writes, leaving unrelated files in the
// output directory alone.
func (s *service) Clean(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.OutputDir) == "" {
		return errOutputDirMissing
	}
	writer := newArtifactWriter(s.cfg.OutputDir)
	var errs []error
	for _, target := range []string{blogDir, languagesFile, highlightFile, manifestFileName} {
		if err := writer.RemoveAll(ctx, target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// selectLanguages keeps the requested codes the registry knows, in registry
// order. No request selects every language.
func (s *service) selectLanguages(registry interfaces.LanguageRegistry, requested []string) []string {
	var out []string
	for _, lang := range registry.Languages() {
		if len(requested) == 0 || slices.Contains(requested, lang.Code) {
			out = append(out, lang.Code)
		}
	}
	return out
}

func (s *service) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return defaultWorkers
}

func languagesPayload(registry interfaces.LanguageRegistry) languagesDocument {
	langs := registry.Languages()
	doc := languagesDocument{Default: registry.Default().Code, Languages: make([]languageDocument, len(langs))}
	for i, lang := range langs {
		doc.Languages[i] = languageDocument{Language: lang, Dir: registry.Direction(lang.Code)}
	}
	return doc
}

func encode(payload any) ([]byte, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}

package posts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/adapters/noop"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	DefaultExtension   = ".mdx"
	DefaultConcurrency = 8
)

// Store reads posts from a content tree laid out as <language>/<slug><ext>.
// It holds no mutable state besides the optional cache, so one Store serves
// concurrent requests.
type Store struct {
	fsys        fs.FS
	registry    interfaces.LanguageRegistry
	renderer    interfaces.MarkdownRenderer
	cache       interfaces.CacheProvider
	cacheTTL    time.Duration
	logger      interfaces.Logger
	extension   string
	concurrency int
}

var _ interfaces.PostStore = (*Store)(nil)

// Option customises a Store.
type Option func(*Store)

// WithCache memoises posts and listings in cache. Entries are content
// addressed so they never need explicit invalidation. A nil or no-op cache
// leaves the store uncached, which also skips listing fingerprints.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) Option {
	return func(s *Store) {
		if cache == nil || noop.IsCache(cache) {
			s.cache = nil
			return
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExtension sets the post file extension, ".mdx" by default.
func WithExtension(ext string) Option {
	return func(s *Store) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extension = ext
	}
}

// WithConcurrency bounds the parallel retrievals issued by ListPosts.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewStore builds a store over fsys, usually os.DirFS of the content root.
func NewStore(fsys fs.FS, registry interfaces.LanguageRegistry, renderer interfaces.MarkdownRenderer, opts ...Option) *Store {
	s := &Store{
		fsys:        fsys,
		registry:    registry,
		renderer:    renderer,
		logger:      logging.NoOp(),
		extension:   DefaultExtension,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the language registry the store resolves codes against.
func (s *Store) Registry() interfaces.LanguageRegistry {
	return s.registry
}

// Cache returns the cache the store reads through, nil when uncached.
func (s *Store) Cache() interfaces.CacheProvider {
	return s.cache
}

// ListSlugs lists the post slugs of language in name order. Unregistered
// languages and missing directories yield an empty list.
func (s *Store) ListSlugs(ctx context.Context, language string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.registry.IsValid(language) {
		return []string{}, nil
	}
	entries, err := s.entries(ctx, strings.TrimSpace(language))
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(entries))
	for i, entry := range entries {
		slugs[i] = strings.TrimSuffix(entry.Name(), s.extension)
	}
	return slugs, nil
}

// GetPost loads, renders and validates one post. found is false when no file
// backs the slug or when the file is rejected; err only reports filesystem
// faults and cancellation.
func (s *Store) GetPost(ctx context.Context, slug, language string) (*interfaces.Post, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	lang := s.registry.Resolve(language)
	logger := logging.WithPostContext(s.logger.WithContext(ctx), slug, lang, "")

	if !validSlug(slug) {
		logger.Debug("posts.get.invalid_slug")
		return nil, false, nil
	}

	file := path.Join(lang, slug+s.extension)
	data, err := s.readFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, contentIOError(err, "read", file)
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])
	key := postKey(lang, slug, checksum)

	if post, ok := s.cachedPost(ctx, key); ok {
		return post, true, nil
	}

	post, err := s.build(ctx, slug, lang, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		logging.WithFields(logger, map[string]any{"path": file}).Warn("posts.get.rejected", "error", err)
		return nil, false, nil
	}
	post.Source = file
	post.Checksum = checksum

	s.storePost(ctx, key, post)
	return post, true, nil
}

// ListPosts returns every valid post of language, drafts included, in slug
// order. Rejected posts are skipped. An unknown language lists the default.
func (s *Store) ListPosts(ctx context.Context, language string) ([]*interfaces.Post, error) {
	lang := s.registry.Resolve(language)

	entries, err := s.entries(ctx, lang)
	if err != nil {
		return nil, err
	}

	listKey := ""
	if s.cache != nil {
		fingerprint, err := s.fingerprint(entries)
		if err == nil {
			listKey = listingKey(lang, fingerprint)
			if list, ok := s.cachedList(ctx, listKey); ok {
				return list, nil
			}
		}
	}

	results := make([]*interfaces.Post, len(entries))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, entry := range entries {
		slug := strings.TrimSuffix(entry.Name(), s.extension)
		group.Go(func() error {
			post, found, err := s.GetPost(gctx, slug, lang)
			if err != nil {
				return err
			}
			if found {
				results[i] = post
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	list := make([]*interfaces.Post, 0, len(results))
	for _, post := range results {
		if post != nil {
			list = append(list, post)
		}
	}

	if listKey != "" {
		s.storeList(ctx, listKey, list)
	}
	return list, nil
}

// ListPublished returns the public posts of language, newest first.
func (s *Store) ListPublished(ctx context.Context, language string) ([]*interfaces.Post, error) {
	list, err := s.ListPosts(ctx, language)
	if err != nil {
		return nil, err
	}
	public := FilterPublic(list)
	SortByPublishedDesc(public)
	return public, nil
}

// ListByTag returns the public posts of language tagged with tag.
func (s *Store) ListByTag(ctx context.Context, language, tag string) ([]*interfaces.Post, error) {
	list, err := s.ListPublished(ctx, language)
	if err != nil {
		return nil, err
	}
	return FilterByTag(list, tag), nil
}

// ListSeries returns the public posts of a series in reading order.
func (s *Store) ListSeries(ctx context.Context, language, series string) ([]*interfaces.Post, error) {
	list, err := s.ListPosts(ctx, language)
	if err != nil {
		return nil, err
	}
	return FilterSeries(FilterPublic(list), series), nil
}

// StaticParams enumerates the (slug, language) route of every valid post in
// every registered language, drafts included. The language is the post's
// own declared language when it overrides its directory. Duplicates keep
// their first occurrence.
func (s *Store) StaticParams(ctx context.Context) ([]interfaces.StaticParam, error) {
	var params []interfaces.StaticParam
	seen := map[interfaces.StaticParam]struct{}{}
	for _, lang := range s.registry.Languages() {
		list, err := s.ListPosts(ctx, lang.Code)
		if err != nil {
			return nil, err
		}
		for _, post := range list {
			param := interfaces.StaticParam{Slug: post.Slug, Language: post.Metadata.Language}
			if _, dup := seen[param]; dup {
				continue
			}
			seen[param] = struct{}{}
			params = append(params, param)
		}
	}
	return params, nil
}

func (s *Store) build(ctx context.Context, slug, lang string, data []byte) (*interfaces.Post, error) {
	meta, body, err := markdown.ParseFrontMatter(data)
	if err != nil {
		return nil, rejection(err, slug)
	}
	html, err := s.renderer.Render(ctx, body)
	if err != nil {
		return nil, err
	}
	return Assemble(slug, meta, lang, html, WithAssembleLogger(s.logger.WithContext(ctx)))
}

// entries returns the post files directly under dir, in name order.
func (s *Store) entries(ctx context.Context, dir string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []fs.DirEntry{}, nil
		}
		return nil, contentIOError(err, "list", dir)
	}
	out := make([]fs.DirEntry, 0, len(all))
	for _, entry := range all {
		if entry.IsDir() || path.Ext(entry.Name()) != s.extension {
			continue
		}
		if strings.TrimSuffix(entry.Name(), s.extension) == "" {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) readFile(name string) ([]byte, error) {
	info, err := fs.Stat(s.fsys, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(s.fsys, name)
}

// validSlug rejects slugs that would leave the language directory.
func validSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, `/\`) && fs.ValidPath(slug)
}

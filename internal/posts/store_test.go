package posts_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/internal/adapters/noop"
	"github.com/goliatone/go-blog/internal/cache"
	"github.com/goliatone/go-blog/internal/i18n"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var modTime = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content), ModTime: modTime}
}

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"en/hello.mdx": file(`---
title: Hello
publishedAt: 2024-01-01
summary: First post
tags: [go, Intro]
series: basics
seriesOrder: 1
---
# Hello

` + "```go\nfunc main() {}\n```\n"),
		"en/older.mdx": file(`---
title: Older
publishedAt: "2023-06-01"
summary: An older post
tags: [go]
series: basics
seriesOrder: 2
---
Older body.
`),
		"en/draft.mdx": file(`---
title: Draft
publishedAt: "2024-03-01"
summary: Not yet
draft: true
---
Work in progress.
`),
		"en/broken.mdx": file(`---
title: Broken
publishedAt: "2024-02-01"
---
Missing summary.
`),
		"en/override.mdx": file(`---
title: Override
publishedAt: "2023-09-01"
summary: Declared in Persian
language: fa
---
Body.
`),
		"en/notes.txt": file("not a post"),
		"fa/salam.mdx": file(`---
title: سلام
publishedAt: "2024-01-05"
summary: خلاصه
---
متن
`),
	}
}

func newRegistry(t *testing.T) *i18n.Registry {
	t.Helper()
	r, err := i18n.NewRegistry(i18n.DefaultConfig())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func newStore(t *testing.T, fsys fs.FS, opts ...posts.Option) *posts.Store {
	t.Helper()
	return posts.NewStore(fsys, newRegistry(t), markdown.NewPipeline(), opts...)
}

func newMemory(t *testing.T) *cache.Memory {
	t.Helper()
	memory, err := cache.NewMemory(time.Minute)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return memory
}

type countingRenderer struct {
	next  interfaces.MarkdownRenderer
	calls atomic.Int32
}

func (c *countingRenderer) Render(ctx context.Context, body []byte) (string, error) {
	c.calls.Add(1)
	return c.next.Render(ctx, body)
}

func slugs(list []*interfaces.Post) string {
	out := make([]string, len(list))
	for i, post := range list {
		out[i] = post.Slug
	}
	return strings.Join(out, ",")
}

func TestListSlugs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, contentFS())

	got, err := store.ListSlugs(ctx, "en")
	if err != nil {
		t.Fatalf("ListSlugs: %v", err)
	}
	if strings.Join(got, ",") != "broken,draft,hello,older,override" {
		t.Fatalf("unexpected slugs %v", got)
	}

	for _, code := range []string{"de", "xx", "../en", ""} {
		unknown, err := store.ListSlugs(ctx, code)
		if err != nil {
			t.Fatalf("ListSlugs(%q): %v", code, err)
		}
		if unknown == nil || len(unknown) != 0 {
			t.Fatalf("ListSlugs(%q) should be empty, got %v", code, unknown)
		}
	}
}

func TestListSlugsMissingDirectoryIsEmpty(t *testing.T) {
	store := newStore(t, fstest.MapFS{"en/a.mdx": file("x")})

	got, err := store.ListSlugs(context.Background(), "fa")
	if err != nil {
		t.Fatalf("ListSlugs: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non nil list, got %#v", got)
	}
}

func TestGetPostAssemblesPost(t *testing.T) {
	store := newStore(t, contentFS())

	post, found, err := store.GetPost(context.Background(), "hello", "en")
	if err != nil || !found {
		t.Fatalf("GetPost = %v, %v", found, err)
	}
	md := post.Metadata
	if md.Title != "Hello" || md.PublishedAt != "2024-01-01" || md.Summary != "First post" {
		t.Fatalf("unexpected metadata %+v", md)
	}
	if md.Language != "en" || strings.Join(md.Tags, ",") != "go,Intro" {
		t.Fatalf("unexpected metadata %+v", md)
	}
	if md.SeriesOrder == nil || *md.SeriesOrder != 1 || md.IsDraft() {
		t.Fatalf("unexpected series or draft %+v", md)
	}
	if !strings.Contains(post.Body, `<h1 id="hello">Hello</h1>`) {
		t.Fatalf("expected rendered heading, got:\n%s", post.Body)
	}
	if !strings.Contains(post.Body, `class="chroma"`) {
		t.Fatalf("expected highlighted code, got:\n%s", post.Body)
	}
	if post.Source != "en/hello.mdx" || len(post.Checksum) != 64 {
		t.Fatalf("unexpected source %q checksum %q", post.Source, post.Checksum)
	}
}

func TestGetPostAbsentCases(t *testing.T) {
	store := newStore(t, contentFS())

	cases := []struct {
		name, slug, lang string
	}{
		{"missing file", "nope", "en"},
		{"missing required field", "broken", "en"},
		{"wrong extension", "notes", "en"},
		{"parent traversal", "../fa/salam", "en"},
		{"nested path", "en/hello", "en"},
		{"empty slug", "", "en"},
		{"other language", "salam", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post, found, err := store.GetPost(context.Background(), tc.slug, tc.lang)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if found || post != nil {
				t.Fatalf("expected absent post, got %+v", post)
			}
		})
	}
}

func TestGetPostInvalidLanguageUsesDefault(t *testing.T) {
	store := newStore(t, contentFS())

	post, found, err := store.GetPost(context.Background(), "hello", "klingon")
	if err != nil || !found {
		t.Fatalf("GetPost = %v, %v", found, err)
	}
	if post.Metadata.Language != "en" {
		t.Fatalf("expected default language, got %q", post.Metadata.Language)
	}
}

func TestGetPostLanguageOverride(t *testing.T) {
	store := newStore(t, contentFS())

	post, found, err := store.GetPost(context.Background(), "override", "en")
	if err != nil || !found {
		t.Fatalf("GetPost = %v, %v", found, err)
	}
	if post.Metadata.Language != "fa" {
		t.Fatalf("expected front matter language to win, got %q", post.Metadata.Language)
	}
}

func TestGetPostRejectsMalformedFrontMatter(t *testing.T) {
	store := newStore(t, fstest.MapFS{
		"en/bad.mdx": file("---\ntitle: [unclosed\n---\nbody\n"),
	})

	_, found, err := store.GetPost(context.Background(), "bad", "en")
	if err != nil || found {
		t.Fatalf("expected silent rejection, got found=%v err=%v", found, err)
	}
}

func TestListPostsSkipsRejectedAndKeepsDrafts(t *testing.T) {
	store := newStore(t, contentFS())

	list, err := store.ListPosts(context.Background(), "en")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if got := slugs(list); got != "draft,hello,older,override" {
		t.Fatalf("unexpected posts %s", got)
	}
}

func TestListPublishedSortsNewestFirst(t *testing.T) {
	store := newStore(t, contentFS())

	list, err := store.ListPublished(context.Background(), "en")
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if got := slugs(list); got != "hello,override,older" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestListByTagAndSeries(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, contentFS())

	tagged, err := store.ListByTag(ctx, "en", "intro")
	if err != nil {
		t.Fatalf("ListByTag: %v", err)
	}
	if got := slugs(tagged); got != "hello" {
		t.Fatalf("unexpected tagged posts %s", got)
	}

	series, err := store.ListSeries(ctx, "en", "basics")
	if err != nil {
		t.Fatalf("ListSeries: %v", err)
	}
	if got := slugs(series); got != "hello,older" {
		t.Fatalf("unexpected series order %s", got)
	}
}

func TestStaticParams(t *testing.T) {
	store := newStore(t, contentFS())

	params, err := store.StaticParams(context.Background())
	if err != nil {
		t.Fatalf("StaticParams: %v", err)
	}
	want := []interfaces.StaticParam{
		{Slug: "draft", Language: "en"},
		{Slug: "hello", Language: "en"},
		{Slug: "older", Language: "en"},
		{Slug: "override", Language: "fa"},
		{Slug: "salam", Language: "fa"},
	}
	if len(params) != len(want) {
		t.Fatalf("expected %d params, got %+v", len(want), params)
	}
	for i := range want {
		if params[i] != want[i] {
			t.Fatalf("param %d = %+v, want %+v", i, params[i], want[i])
		}
	}
}

func TestStoreCachesRenderedPosts(t *testing.T) {
	ctx := context.Background()
	fsys := contentFS()
	renderer := &countingRenderer{next: markdown.NewPipeline()}
	store := posts.NewStore(fsys, newRegistry(t), renderer, posts.WithCache(newMemory(t), time.Minute))

	first, found, err := store.GetPost(ctx, "older", "en")
	if err != nil || !found {
		t.Fatalf("GetPost = %v, %v", found, err)
	}
	second, _, _ := store.GetPost(ctx, "older", "en")
	if renderer.calls.Load() != 1 {
		t.Fatalf("expected one render, got %d", renderer.calls.Load())
	}
	if second.Body != first.Body || second.Checksum != first.Checksum {
		t.Fatal("cached post differs from the original")
	}

	fsys["en/older.mdx"] = file(`---
title: Older, edited
publishedAt: "2023-06-01"
summary: An older post
---
Edited body.
`)
	edited, _, _ := store.GetPost(ctx, "older", "en")
	if edited.Metadata.Title != "Older, edited" || renderer.calls.Load() != 2 {
		t.Fatalf("expected edited file to be re-rendered, got %q after %d renders", edited.Metadata.Title, renderer.calls.Load())
	}
}

func TestStoreCachesListings(t *testing.T) {
	ctx := context.Background()
	fsys := contentFS()
	renderer := &countingRenderer{next: markdown.NewPipeline()}
	store := posts.NewStore(fsys, newRegistry(t), renderer, posts.WithCache(newMemory(t), 0))

	if _, err := store.ListPosts(ctx, "en"); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	rendered := renderer.calls.Load()
	if _, err := store.ListPosts(ctx, "en"); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if renderer.calls.Load() != rendered {
		t.Fatal("expected cached listing")
	}

	fsys["en/newer.mdx"] = file("---\ntitle: Newer\npublishedAt: \"2024-05-01\"\nsummary: s\n---\nx\n")
	list, err := store.ListPosts(ctx, "en")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if got := slugs(list); got != "draft,hello,newer,older,override" {
		t.Fatalf("expected new file in listing, got %s", got)
	}

	if err := store.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
}

func TestStoreWithoutUsableCacheStaysUncached(t *testing.T) {
	ctx := context.Background()
	renderer := &countingRenderer{next: markdown.NewPipeline()}

	for name, provider := range map[string]interfaces.CacheProvider{"nil": nil, "noop": noop.Cache()} {
		store := posts.NewStore(contentFS(), newRegistry(t), renderer, posts.WithCache(provider, time.Minute))
		if store.Cache() != nil {
			t.Fatalf("%s cache should leave the store uncached, got %T", name, store.Cache())
		}
	}

	cached := posts.NewStore(contentFS(), newRegistry(t), renderer, posts.WithCache(newMemory(t), time.Minute))
	if cached.Cache() == nil {
		t.Fatal("memory cache should be kept")
	}
	if _, err := cached.ListPosts(ctx, "en"); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
}

// faultFS only implements Open so every read goes through it.
type faultFS struct {
	files fstest.MapFS
	fail  string
}

func (f faultFS) Open(name string) (fs.File, error) {
	if name == f.fail {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.files.Open(name)
}

func TestStoreSurfacesFilesystemFaults(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, faultFS{files: contentFS(), fail: "en/hello.mdx"})

	_, found, err := store.GetPost(ctx, "hello", "en")
	if err == nil || found {
		t.Fatalf("expected filesystem fault, got found=%v err=%v", found, err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected wrapped permission error, got %v", err)
	}
	if _, err := store.ListPosts(ctx, "en"); err == nil {
		t.Fatal("expected ListPosts to surface the fault")
	}

	dirFault := newStore(t, faultFS{files: contentFS(), fail: "fa"})
	if _, err := dirFault.ListSlugs(ctx, "fa"); err == nil {
		t.Fatal("expected ListSlugs to surface the fault")
	}
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := newStore(t, contentFS())

	if _, _, err := store.GetPost(ctx, "hello", "en"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.ListPosts(ctx, "en"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWithExtension(t *testing.T) {
	store := newStore(t, fstest.MapFS{
		"en/a.md":  file("---\ntitle: A\npublishedAt: \"2024-01-01\"\nsummary: s\n---\nx\n"),
		"en/b.mdx": file("ignored"),
	}, posts.WithExtension("md"))

	got, err := store.ListSlugs(context.Background(), "en")
	if err != nil || strings.Join(got, ",") != "a" {
		t.Fatalf("ListSlugs = %v, %v", got, err)
	}
}

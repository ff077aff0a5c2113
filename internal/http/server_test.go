package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gofiber/fiber/v2"

	bloghttp "github.com/goliatone/go-blog/internal/http"
	"github.com/goliatone/go-blog/internal/i18n"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"en/hello.mdx": {Data: []byte("---\ntitle: Hello\npublishedAt: \"2024-01-01\"\nsummary: First\ntags: [go]\nseries: intro\nseriesOrder: 2\n---\n# Hello\n")},
		"en/older.mdx": {Data: []byte("---\ntitle: Older\npublishedAt: \"2023-06-01\"\nsummary: Older\nseries: intro\nseriesOrder: 1\n---\nbody\n")},
		"en/draft.mdx": {Data: []byte("---\ntitle: Draft\npublishedAt: \"2024-06-01\"\nsummary: s\ndraft: true\n---\nbody\n")},
		"fa/salam.mdx": {Data: []byte("---\ntitle: سلام\npublishedAt: \"2024-01-05\"\nsummary: خلاصه\n---\nمتن\n")},
	}
}

func newApp(t *testing.T, fsys fs.FS, opts ...bloghttp.Option) *fiber.App {
	t.Helper()
	registry, err := i18n.NewRegistry(i18n.DefaultConfig())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := posts.NewStore(fsys, registry, markdown.NewPipeline())
	return bloghttp.New(store, opts...).App()
}

func do(t *testing.T, app *fiber.App, path string) *nethttp.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("app.Test(%s): %v", path, err)
	}
	return resp
}

func decode(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

type listing struct {
	Language string   `json:"language"`
	Dir      string   `json:"dir"`
	Tags     []string `json:"tags"`
	Posts    []struct {
		Slug string `json:"slug"`
	} `json:"posts"`
}

func (l listing) slugs() string {
	out := make([]string, len(l.Posts))
	for i, p := range l.Posts {
		out[i] = p.Slug
	}
	return strings.Join(out, ",")
}

func TestIndexRedirectsToDefaultLanguage(t *testing.T) {
	resp := do(t, newApp(t, contentFS()), "/blog")
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != "/blog/en" {
		t.Fatalf("unexpected redirect %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestListingServesPublicPostsNewestFirst(t *testing.T) {
	resp := do(t, newApp(t, contentFS()), "/blog/en")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body listing
	decode(t, resp, &body)
	if body.slugs() != "hello,older" || body.Dir != "ltr" {
		t.Fatalf("unexpected listing %+v", body)
	}
	if strings.Join(body.Tags, ",") != "go" {
		t.Fatalf("unexpected tags %v", body.Tags)
	}
}

func TestListingRightToLeftLanguage(t *testing.T) {
	var body listing
	decode(t, do(t, newApp(t, contentFS()), "/blog/fa"), &body)
	if body.Dir != "rtl" || body.slugs() != "salam" {
		t.Fatalf("unexpected listing %+v", body)
	}
}

func TestListingInvalidLanguageRedirects(t *testing.T) {
	app := newApp(t, contentFS())

	resp := do(t, app, "/blog/xx")
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != "/blog/en" {
		t.Fatalf("unexpected redirect %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = do(t, app, "/blog/xx/tags/go")
	if resp.Header.Get("Location") != "/blog/en/tags/go" {
		t.Fatalf("unexpected tag redirect %q", resp.Header.Get("Location"))
	}
}

func TestPostRoute(t *testing.T) {
	app := newApp(t, contentFS())

	resp := do(t, app, "/blog/en/hello")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if resp.Header.Get(bloghttp.HeaderRequestID) == "" {
		t.Fatal("expected request id header")
	}
	var body struct {
		Language string `json:"language"`
		Dir      string `json:"dir"`
		Post     struct {
			Slug     string `json:"slug"`
			Body     string `json:"body"`
			Metadata struct {
				Title string `json:"title"`
			} `json:"metadata"`
		} `json:"post"`
	}
	decode(t, resp, &body)
	if body.Post.Slug != "hello" || body.Post.Metadata.Title != "Hello" || body.Language != "en" {
		t.Fatalf("unexpected post %+v", body)
	}
	if !strings.Contains(body.Post.Body, "<h1") {
		t.Fatalf("expected rendered body, got %q", body.Post.Body)
	}
}

func TestPostRouteInvalidLanguageServesDefault(t *testing.T) {
	resp := do(t, newApp(t, contentFS()), "/blog/xx/hello")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected default language content, got %d", resp.StatusCode)
	}
}

func TestPostRouteNotFound(t *testing.T) {
	app := newApp(t, contentFS())

	for _, path := range []string{"/blog/en/missing", "/blog/fa/hello", "/blog/en/draft-nope"} {
		resp := do(t, app, path)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
		var body struct {
			Error     string `json:"error"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		}
		decode(t, resp, &body)
		if body.Error != "not_found" || body.Message != "post not found" || body.RequestID == "" {
			t.Fatalf("unexpected error body %+v", body)
		}
	}
}

func TestTagAndSeriesRoutes(t *testing.T) {
	app := newApp(t, contentFS())

	var tagged listing
	decode(t, do(t, app, "/blog/en/tags/GO"), &tagged)
	if tagged.slugs() != "hello" {
		t.Fatalf("unexpected tagged posts %s", tagged.slugs())
	}

	var series listing
	decode(t, do(t, app, "/blog/en/series/intro"), &series)
	if series.slugs() != "older,hello" {
		t.Fatalf("unexpected series order %s", series.slugs())
	}
}

func TestLanguagesRoute(t *testing.T) {
	var body struct {
		Default   string `json:"default"`
		Languages []struct {
			Code string `json:"code"`
			Dir  string `json:"dir"`
		} `json:"languages"`
	}
	decode(t, do(t, newApp(t, contentFS()), "/api/languages"), &body)
	if body.Default != "en" || len(body.Languages) != 2 {
		t.Fatalf("unexpected languages %+v", body)
	}
	if body.Languages[1].Code != "fa" || body.Languages[1].Dir != "rtl" {
		t.Fatalf("unexpected fa entry %+v", body.Languages[1])
	}
}

func TestThemeCSSRoute(t *testing.T) {
	resp := do(t, newApp(t, contentFS()), "/assets/highlight.css")
	defer resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "prefers-color-scheme: dark") {
		t.Fatalf("expected dark scheme block, got:\n%s", data)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	app := newApp(t, contentFS())
	if resp := do(t, app, "/healthz"); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected health status %d", resp.StatusCode)
	}
	if resp := do(t, app, "/nope"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", resp.StatusCode)
	}
}

type brokenFS struct{}

func (brokenFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("disk on fire")}
}

func TestFilesystemFaultIsInternalError(t *testing.T) {
	resp := do(t, newApp(t, brokenFS{}), "/blog/en")
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	decode(t, resp, &body)
	if body.Error != "internal_error" || strings.Contains(body.Message, "disk on fire") {
		t.Fatalf("internal details leaked: %+v", body)
	}
}

func TestBasePathOption(t *testing.T) {
	app := newApp(t, contentFS(), bloghttp.WithBasePath("/posts"), bloghttp.WithRequestTimeout(time.Second))
	resp := do(t, app, "/posts")
	if resp.Header.Get("Location") != "/posts/en" {
		t.Fatalf("unexpected redirect %q", resp.Header.Get("Location"))
	}
}

func TestListenStopsOnCancel(t *testing.T) {
	registry := i18n.MustRegistry(i18n.DefaultConfig())
	server := bloghttp.New(posts.NewStore(contentFS(), registry, markdown.NewPipeline()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Listen(ctx, "127.0.0.1:0", time.Second) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Listen: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

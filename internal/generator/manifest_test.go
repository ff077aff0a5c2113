package generator

import (
	"context"
	"strings"
	"testing"
)

func TestManifestRoundTripAndSkip(t *testing.T) {
	m := newBuildManifest()
	m.setPost(manifestPost{Slug: "hello", Language: "en", Output: "blog/en/hello.json", Checksum: "abc"})
	m.setPost(manifestPost{Slug: "salam", Language: "fa", Output: "blog/fa/salam.json", Checksum: "def"})

	data, err := m.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Index(string(data), `"hello"`) > strings.Index(string(data), `"salam"`) {
		t.Fatalf("expected posts ordered by language then slug:\n%s", data)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	if !parsed.shouldSkipPost("en", "hello", "abc", "blog/en/hello.json") {
		t.Fatal("expected unchanged post to be skipped")
	}
	if parsed.shouldSkipPost("en", "hello", "changed", "blog/en/hello.json") {
		t.Fatal("changed checksum must not be skipped")
	}
	if parsed.shouldSkipPost("en", "missing", "abc", "blog/en/missing.json") {
		t.Fatal("unknown post must not be skipped")
	}

	parsed.prunePosts(map[string]struct{}{postKey("fa", "salam"): {}})
	if _, ok := parsed.lookupPost("en", "hello"); ok {
		t.Fatal("expected pruned entry to be gone")
	}
}

func TestParseManifestIgnoresOtherVersions(t *testing.T) {
	parsed, err := parseManifest([]byte(`{"version": 99, "posts": [{"slug": "a", "language": "en"}]}`))
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	if len(parsed.Posts) != 0 {
		t.Fatalf("expected empty manifest, got %d entries", len(parsed.Posts))
	}
	if _, err := parseManifest([]byte("{")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDirWriterRejectsEscapingPaths(t *testing.T) {
	w := newArtifactWriter(t.TempDir())
	ctx := context.Background()
	for _, rel := range []string{"", "../outside.json", "/abs.json", "blog/../../x"} {
		if err := w.WriteFile(ctx, writeFileRequest{Path: rel, Content: []byte("{}")}); err == nil {
			t.Errorf("expected %q to be rejected", rel)
		}
	}
	if err := w.WriteFile(ctx, writeFileRequest{Path: "blog/en/a.json", Content: []byte("{}")}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := w.ReadFile(ctx, "blog/en/a.json")
	if err != nil || string(data) != "{}" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}
}

func TestOutputPaths(t *testing.T) {
	if got := postOutputPath("fa", "salam"); got != "blog/fa/salam.json" {
		t.Fatalf("postOutputPath = %q", got)
	}
	if got := indexOutputPath("en"); got != "blog/en/index.json" {
		t.Fatalf("indexOutputPath = %q", got)
	}
}

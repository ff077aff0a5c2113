// Package testsupport holds content fixtures shared by package tests.
package testsupport

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing/fstest"
)

// ContentFS returns a bilingual content tree with two public English posts,
// an English draft, a rejected English post and one Persian post.
func ContentFS() fstest.MapFS {
	return fstest.MapFS{
		"en/hello.mdx":  {Data: []byte("---\ntitle: Hello\npublishedAt: \"2024-01-01\"\nsummary: First\ntags: [go]\nseries: intro\nseriesOrder: 2\n---\n# Hello\n\n```go\nfunc main() {}\n```\n")},
		"en/older.mdx":  {Data: []byte("---\ntitle: Older\npublishedAt: \"2023-06-01\"\nsummary: Older\nseries: intro\nseriesOrder: 1\n---\nbody\n")},
		"en/draft.mdx":  {Data: []byte("---\ntitle: Draft\npublishedAt: \"2024-06-01\"\nsummary: s\ndraft: true\n---\nbody\n")},
		"en/broken.mdx": {Data: []byte("---\ntitle: Broken\n---\nmissing fields\n")},
		"fa/salam.mdx":  {Data: []byte("---\ntitle: سلام\npublishedAt: \"2024-01-05\"\nsummary: خلاصه\n---\nمتن\n")},
	}
}

// WriteContent copies fsys below dir.
func WriteContent(dir string, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

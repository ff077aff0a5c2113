package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type writeCategory string

const (
	categoryPost      writeCategory = "post"
	categoryIndex     writeCategory = "index"
	categoryLanguages writeCategory = "languages"
	categoryAsset     writeCategory = "asset"
	categoryManifest  writeCategory = "manifest"
)

// writeFileRequest describes a file write routed through the artifact writer.
type writeFileRequest struct {
	Path     string
	Content  []byte
	Language string
	Category writeCategory
}

// artifactWriter abstracts where generator outputs land.
type artifactWriter interface {
	WriteFile(ctx context.Context, req writeFileRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	RemoveAll(ctx context.Context, path string) error
}

func newArtifactWriter(root string) artifactWriter {
	return &dirWriter{root: root}
}

// dirWriter writes below a root directory. Files are written to a temporary
// sibling and renamed so readers never observe partial output.
type dirWriter struct {
	root string
}

func (w *dirWriter) resolve(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || !fs.ValidPath(rel) {
		return "", fmt.Errorf("generator: invalid output path %q", rel)
	}
	return filepath.Join(w.root, filepath.FromSlash(rel)), nil
}

func (w *dirWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content")
	}
	target, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir for %s: %w", req.Path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if _, err := tmp.Write(req.Content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	return nil
}

func (w *dirWriter) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := w.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

func (w *dirWriter) Exists(_ context.Context, rel string) bool {
	target, err := w.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(target)
	return err == nil
}

func (w *dirWriter) RemoveAll(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := w.resolve(rel)
	if err != nil {
		return err
	}
	return os.RemoveAll(target)
}

// dryRunWriter records writes without touching disk.
type dryRunWriter struct {
	artifactWriter
}

func (dryRunWriter) WriteFile(ctx context.Context, _ writeFileRequest) error {
	return ctx.Err()
}

func (dryRunWriter) RemoveAll(ctx context.Context, _ string) error {
	return ctx.Err()
}

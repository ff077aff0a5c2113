package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/cmd/internal/bootstrap"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

func writeContent(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := testsupport.WriteContent(root, testsupport.ContentFS()); err != nil {
		t.Fatalf("write content: %v", err)
	}
	return root
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRunRequiresCommand(t *testing.T) {
	if _, err := runCmd(t); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := runCmd(t, "publish"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for unknown command, got %v", err)
	}
}

func TestListCommand(t *testing.T) {
	dir := writeContent(t)

	out, err := runCmd(t, "list", "--content-dir", dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "hello") || strings.Contains(out, "draft") {
		t.Fatalf("unexpected listing:\n%s", out)
	}

	out, err = runCmd(t, "list", "--content-dir", dir, "--drafts")
	if err != nil {
		t.Fatalf("list --drafts: %v", err)
	}
	if !strings.Contains(out, "Draft (draft)") {
		t.Fatalf("expected draft marker:\n%s", out)
	}

	out, err = runCmd(t, "list", "--content-dir", dir, "--lang", "fa", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var list []struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(list) != 1 || list[0].Slug != "salam" {
		t.Fatalf("unexpected fa listing %+v", list)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := writeContent(t)

	out, err := runCmd(t, "render", "--content-dir", dir, "--slug", "hello", "--html")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Fatalf("unexpected html %q", out)
	}

	if _, err := runCmd(t, "render", "--content-dir", dir, "--slug", "missing"); err == nil {
		t.Fatal("expected not found error")
	}
	if _, err := runCmd(t, "render", "--content-dir", dir); err == nil {
		t.Fatal("expected --slug to be required")
	}
}

func TestParamsCommand(t *testing.T) {
	dir := writeContent(t)
	out, err := runCmd(t, "params", "--content-dir", dir)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	var params []struct {
		Slug     string `json:"slug"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal([]byte(out), &params); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(params) != 4 {
		t.Fatalf("expected 4 params, got %+v", params)
	}
}

func TestExportCommand(t *testing.T) {
	dir := writeContent(t)
	out := filepath.Join(t.TempDir(), "dist")

	summary, err := runCmd(t, "export", "--content-dir", dir, "--out", out, "--clean")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(summary, "4 posts written") {
		t.Fatalf("unexpected summary %q", summary)
	}
	for _, rel := range []string{"blog/en/hello.json", "blog/fa/salam.json", "blog/en/index.json", "api/languages.json"} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	summary, err = runCmd(t, "export", "--content-dir", dir, "--out", out, "--dry-run")
	if err != nil {
		t.Fatalf("export --dry-run: %v", err)
	}
	if !strings.HasPrefix(summary, "dry run: 0 posts written, 4 unchanged") {
		t.Fatalf("unexpected summary %q", summary)
	}

	_, err = runCmd(t, "export", "--content-dir", dir, "--out", out, "--only", "e n")
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected a validation error for a malformed language, got %v", err)
	}
}

func TestCSSCommand(t *testing.T) {
	out, err := runCmd(t, "css", "--content-dir", t.TempDir())
	if err != nil {
		t.Fatalf("css: %v", err)
	}
	if !strings.Contains(out, "prefers-color-scheme: dark") {
		t.Fatalf("unexpected css:\n%s", out)
	}
}

func TestBootstrapFailureIsReported(t *testing.T) {
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	moduleBuilder = func(context.Context, bootstrap.Options) (*bootstrap.Module, error) {
		return nil, errors.New("boom")
	}

	if _, err := runCmd(t, "list"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-blog/cmd/internal/bootstrap"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runPreview(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markdown preview: %v", err)
	}
}

// runPreview renders one post file from anywhere on disk. The slug is the
// file name without extension and the language is its parent directory.
func runPreview(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("markdown-preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file")
	filePath := fs.String("file", "", "Post file to preview")
	renderHTML := fs.Bool("render-html", true, "Render markdown body into HTML as part of the preview")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return errors.New("--file is required")
	}

	module, err := moduleBuilder(ctx, bootstrap.Options{ConfigPath: *configPath})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	source, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("read post: %w", err)
	}
	meta, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return err
	}

	slug := strings.TrimSuffix(filepath.Base(*filePath), filepath.Ext(*filePath))
	lang := module.Module.Languages().Resolve(filepath.Base(filepath.Dir(*filePath)))

	rendered := string(body)
	if *renderHTML {
		rendered, err = module.Module.Markdown().Render(ctx, body)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}

	post, err := posts.Assemble(slug, meta, lang, rendered, posts.WithAssembleLogger(module.Logger))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Path: %s\nSlug: %s\nLanguage: %s\n\n", *filePath, post.Slug, post.Metadata.Language)
	if metadata, err := json.MarshalIndent(post.Metadata, "", "  "); err == nil {
		fmt.Fprintf(stdout, "Metadata:\n%s\n\n", metadata)
	}
	if *renderHTML {
		fmt.Fprintf(stdout, "Rendered HTML:\n%s\n", post.Body)
	} else {
		fmt.Fprintf(stdout, "Markdown Body:\n%s\n", post.Body)
	}
	return nil
}

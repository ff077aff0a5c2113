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
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/goliatone/go-blog/cmd/internal/bootstrap"
	"github.com/goliatone/go-blog/internal/commands"
	staticcmd "github.com/goliatone/go-blog/internal/commands/static"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

var errUsage = errors.New("usage: blog <serve|list|render|params|export|css> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("blog: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(ctx, rest)
	case "list":
		return runList(ctx, rest, stdout)
	case "render":
		return runRender(ctx, rest, stdout)
	case "params":
		return runParams(ctx, rest, stdout)
	case "export":
		return runExport(ctx, rest, stdout)
	case "css":
		return runCSS(ctx, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

// moduleFlags registers the flags every command shares.
func moduleFlags(fs *flag.FlagSet) func() bootstrap.Options {
	configPath := fs.String("config", "", "Path to a YAML config file")
	contentDir := fs.String("content-dir", "", "Path to the content root (overrides config)")
	languages := fs.String("languages", "", "Comma separated language codes (overrides config)")
	defaultLanguage := fs.String("default-language", "", "Default language code (overrides config)")
	logLevel := fs.String("log-level", "", "Log level (overrides config)")
	return func() bootstrap.Options {
		return bootstrap.Options{
			ConfigPath:      *configPath,
			ContentDir:      *contentDir,
			Languages:       bootstrap.SplitList(*languages),
			DefaultLanguage: *defaultLanguage,
			LogLevel:        *logLevel,
		}
	}
}

func build(ctx context.Context, opts bootstrap.Options) (*bootstrap.Module, error) {
	module, err := moduleBuilder(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	options := moduleFlags(fs)
	addr := fs.String("addr", "", "Listen address (overrides config)")
	watch := fs.Bool("watch", false, "Clear the post cache when content changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := build(ctx, options())
	if err != nil {
		return err
	}
	defer module.Module.Close()

	cfg := module.Module.Container().Config
	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	if *watch || cfg.Content.Watch {
		go func() {
			if err := module.Module.Watch(ctx); err != nil {
				module.Logger.Error("blog.cli.watch_failed", "error", err)
			}
		}()
	}

	return module.Module.HTTPServer().Listen(ctx, listenAddr, cfg.Server.ShutdownTimeout)
}

func runList(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	options := moduleFlags(fs)
	lang := fs.String("lang", "", "Language to list (defaults to the default language)")
	drafts := fs.Bool("drafts", false, "Include drafts")
	tag := fs.String("tag", "", "Only posts carrying this tag")
	series := fs.String("series", "", "Only posts of this series, in series order")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := build(ctx, options())
	if err != nil {
		return err
	}
	defer module.Module.Close()

	store := module.Module.Posts()
	var list []*interfaces.Post
	switch {
	case *series != "":
		list, err = store.ListSeries(ctx, *lang, *series)
	case *tag != "":
		list, err = store.ListByTag(ctx, *lang, *tag)
	case *drafts:
		list, err = store.ListPosts(ctx, *lang)
		posts.SortByPublishedDesc(list)
	default:
		list, err = store.ListPublished(ctx, *lang)
	}
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	if *asJSON {
		return writeJSON(stdout, list)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tLANGUAGE\tPUBLISHED\tTITLE")
	for _, post := range list {
		title := post.Metadata.Title
		if post.Metadata.IsDraft() {
			title += " (draft)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", post.Slug, post.Metadata.Language, post.Metadata.PublishedAt, title)
	}
	return tw.Flush()
}

func runRender(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	options := moduleFlags(fs)
	lang := fs.String("lang", "", "Post language (defaults to the default language)")
	slug := fs.String("slug", "", "Post slug")
	htmlOnly := fs.Bool("html", false, "Print only the rendered HTML body")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *slug == "" {
		return errors.New("--slug is required")
	}

	module, err := build(ctx, options())
	if err != nil {
		return err
	}
	defer module.Module.Close()

	post, found, err := module.Module.GetPost(ctx, *slug, *lang)
	if err != nil {
		return fmt.Errorf("render post: %w", err)
	}
	if !found {
		return posts.NotFound(*slug, module.Module.Languages().Resolve(*lang))
	}
	if *htmlOnly {
		_, err := io.WriteString(stdout, post.Body)
		return err
	}
	return writeJSON(stdout, post)
}

func runParams(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	options := moduleFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := build(ctx, options())
	if err != nil {
		return err
	}
	defer module.Module.Close()

	params, err := module.Module.StaticParams(ctx)
	if err != nil {
		return fmt.Errorf("static params: %w", err)
	}
	return writeJSON(stdout, params)
}

func runExport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	options := moduleFlags(fs)
	out := fs.String("out", "", "Output directory (overrides config)")
	only := fs.String("only", "", "Comma separated languages to export (defaults to all)")
	dryRun := fs.Bool("dry-run", false, "Report the outputs without writing them")
	clean := fs.Bool("clean", false, "Remove previous output before building")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := options()
	opts.OutputDir = *out
	module, err := build(ctx, opts)
	if err != nil {
		return err
	}
	defer module.Module.Close()

	svc := module.Module.Generator()
	logger := commands.CommandLogger(module.Module.Container().LoggerProvider(), "static")
	languages := bootstrap.SplitList(*only)

	var result *generator.BuildResult
	capture := func(env staticcmd.ResultEnvelope) { result = env.Result }
	if *dryRun {
		err = staticcmd.NewDiffSiteHandler(svc, logger).Execute(ctx, staticcmd.DiffSiteCommand{
			Languages:      languages,
			ResultCallback: capture,
		})
	} else {
		err = staticcmd.NewBuildSiteHandler(svc, logger).Execute(ctx, staticcmd.BuildSiteCommand{
			Languages:      languages,
			Clean:          *clean,
			ResultCallback: capture,
		})
	}
	if result != nil {
		printResult(stdout, result)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func runCSS(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("css", flag.ContinueOnError)
	options := moduleFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := build(ctx, options())
	if err != nil {
		return err
	}
	defer module.Module.Close()

	css, err := module.Module.ThemeCSS()
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, css)
	return err
}

func printResult(w io.Writer, result *generator.BuildResult) {
	mode := "export"
	if result.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "%s: %d posts written, %d unchanged, %d indexes, languages %v in %s\n",
		mode, result.PostsBuilt, result.PostsSkipped, result.IndexesBuilt, result.Languages, result.Duration)
	for _, output := range result.Outputs {
		fmt.Fprintf(w, "  %s\n", output)
	}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

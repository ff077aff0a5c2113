package zerolog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Config captures the zerolog adapter options. Format is json (default) or
// console.
type Config struct {
	Level  string
	Format string
	Writer io.Writer
}

// Provider hands out zerolog backed loggers sharing one root.
type Provider struct {
	root zerolog.Logger
}

// NewProvider builds the root zerolog logger.
func NewProvider(cfg Config) (*Provider, error) {
	out := cfg.Writer
	if out == nil {
		out = os.Stdout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("logging: unsupported zerolog format %q", cfg.Format)
	}

	level, err := zerolog.ParseLevel(logging.NormalizeLevel(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	root := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Provider{root: root}, nil
}

// GetLogger returns a logger tagged with name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	return &adapter{inner: p.root.With().Str("logger", name).Logger()}
}

type adapter struct {
	inner zerolog.Logger
	ctx   context.Context
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.emit(l.inner.Trace(), msg, args) }
func (l *adapter) Debug(msg string, args ...any) { l.emit(l.inner.Debug(), msg, args) }
func (l *adapter) Info(msg string, args ...any)  { l.emit(l.inner.Info(), msg, args) }
func (l *adapter) Warn(msg string, args ...any)  { l.emit(l.inner.Warn(), msg, args) }
func (l *adapter) Error(msg string, args ...any) { l.emit(l.inner.Error(), msg, args) }

// Fatal logs at fatal level without exiting the process.
func (l *adapter) Fatal(msg string, args ...any) {
	l.emit(l.inner.WithLevel(zerolog.FatalLevel), msg, args)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return &adapter{inner: l.inner.With().Fields(fields).Logger(), ctx: l.ctx}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return &adapter{inner: l.inner, ctx: ctx}
}

func (l *adapter) emit(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	if fields := logging.ContextFields(l.ctx); len(fields) > 0 {
		event = event.Fields(fields)
	}
	if len(args) > 0 {
		event = event.Fields(argsToFields(args))
	}
	event.Msg(msg)
}

func argsToFields(args []any) map[string]any {
	fields := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i == len(args)-1 {
			fields["field_"+strconv.Itoa(i/2)] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "field_" + strconv.Itoa(i/2)
		}
		fields[key] = args[i+1]
	}
	return fields
}

package posts

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const rejectedMessage = "post rejected"

// AssembleOption customises Assemble.
type AssembleOption func(*assembleConfig)

type assembleConfig struct {
	logger interfaces.Logger
}

// WithAssembleLogger receives a warning for every optional field dropped
// because of its type.
func WithAssembleLogger(logger interfaces.Logger) AssembleOption {
	return func(cfg *assembleConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Assemble validates meta and combines it with slug and the rendered body.
// The language is meta's own language field when set, otherwise
// requestedLanguage. A post missing title, publishedAt or summary, or whose
// required fields are not scalars, is rejected with a validation error.
// Optional fields of the wrong type are dropped.
func Assemble(slug string, meta markdown.FrontMatter, requestedLanguage, body string, opts ...AssembleOption) (*interfaces.Post, error) {
	cfg := assembleConfig{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var fieldErrs goerrors.ValidationErrors
	required := func(field string, err error) {
		if err != nil {
			fieldErrs = append(fieldErrs, goerrors.FieldError{Field: field, Message: err.Error()})
		}
	}
	optional := func(field string, err error) bool {
		if err == nil {
			return true
		}
		cfg.logger.Warn("posts.assemble.field_dropped", "slug", slug, "field", field, "error", err)
		return false
	}

	var md interfaces.PostMetadata
	var err error

	md.Title, err = meta.String("title")
	required("title", err)
	md.PublishedAt, err = meta.String("publishedAt")
	required("publishedAt", err)
	md.Summary, err = meta.String("summary")
	required("summary", err)

	if len(fieldErrs) > 0 {
		return nil, rejection(goerrors.NewValidation(rejectedMessage, fieldErrs...), slug)
	}

	if image, err := meta.String("image"); optional("image", err) {
		md.Image = image
	}
	if tags, err := meta.StringSlice("tags"); optional("tags", err) {
		md.Tags = tags
	}
	if series, err := meta.String("series"); optional("series", err) {
		md.Series = series
	}
	if order, err := meta.Int("seriesOrder"); optional("seriesOrder", err) {
		md.SeriesOrder = order
	}
	if draft, err := meta.Bool("draft"); optional("draft", err) {
		md.Draft = draft
	}
	if language, err := meta.String("language"); optional("language", err) {
		md.Language = language
	}

	if md.Language == "" {
		md.Language = requestedLanguage
	}

	if err := validateMetadata(md); err != nil {
		return nil, rejection(err, slug)
	}

	return &interfaces.Post{Slug: slug, Metadata: md, Body: body}, nil
}

func validateMetadata(md interfaces.PostMetadata) error {
	err := validation.ValidateStruct(&md,
		validation.Field(&md.Title, validation.Required),
		validation.Field(&md.PublishedAt, validation.Required, validation.By(validDate)),
		validation.Field(&md.Summary, validation.Required),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, rejectedMessage)
	}
	return nil
}

func validDate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := markdown.ParseDate(s); err != nil {
		return errors.New("must be a date such as 2006-01-02")
	}
	return nil
}

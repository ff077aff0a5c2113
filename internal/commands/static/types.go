package staticcmd

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/generator"
)

const (
	buildSiteMessageType = "blog.static.build"
	diffSiteMessageType  = "blog.static.diff"
	cleanSiteMessageType = "blog.static.clean"
)

var languageCode = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// ResultCallback receives the outcome of a build or diff. It runs
// synchronously inside the handler, also when the build failed part way.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries a BuildResult plus what produced it.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand exports the blog. Clean removes earlier output first.
type BuildSiteCommand struct {
	Languages      []string       `json:"languages,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	Clean          bool           `json:"clean,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate checks language codes and rejects a clean dry run.
func (m BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Languages, languageRules("blog.static.build.language_invalid")...),
		validation.Field(&m.Clean, validation.When(m.DryRun,
			validation.Empty.ErrorObject(validation.NewError("blog.static.build.clean_dry_run", "clean cannot be combined with a dry run")),
		)),
	)
}

// DiffSiteCommand runs a dry run build and reports which outputs would
// change without writing them.
type DiffSiteCommand struct {
	Languages      []string       `json:"languages,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

func (m DiffSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Languages, languageRules("blog.static.diff.language_invalid")...),
	)
}

// CleanSiteCommand removes every exported file.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

func (CleanSiteCommand) Validate() error { return nil }

func languageRules(code string) []validation.Rule {
	invalid := validation.NewError(code, "languages must be language codes such as en or pt-BR")
	return []validation.Rule{
		validation.Each(
			validation.Required.ErrorObject(invalid),
			validation.Match(languageCode).ErrorObject(invalid),
		),
	}
}

// Package generator exposes the static JSON export of the blog. Use NewService
// with Config and Dependencies to write every post route, the per-language
// indexes, the language list and the highlight stylesheet to a directory.
package generator

import internal "github.com/goliatone/go-blog/internal/generator"

type (
	Service      = internal.Service
	Config       = internal.Config
	BuildOptions = internal.BuildOptions
	BuildResult  = internal.BuildResult
	Dependencies = internal.Dependencies
	PostSource   = internal.PostSource
)

var ErrServiceDisabled = internal.ErrServiceDisabled

// NewService wires a static exporter with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}

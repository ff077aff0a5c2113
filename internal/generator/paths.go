package generator

import (
	"path"
	"strings"
)

const (
	blogDir       = "blog"
	indexFile     = "index.json"
	languagesFile = "api/languages.json"
	highlightFile = "assets/highlight.css"
	jsonExtension = ".json"
)

// postOutputPath is blog/<lang>/<slug>.json.
func postOutputPath(language, slug string) string {
	return path.Join(blogDir, strings.TrimSpace(language), strings.TrimSpace(slug)+jsonExtension)
}

// indexOutputPath is blog/<lang>/index.json.
func indexOutputPath(language string) string {
	return path.Join(blogDir, strings.TrimSpace(language), indexFile)
}

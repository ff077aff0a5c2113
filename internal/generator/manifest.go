package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".generator-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores the checksum of every post written by the last
// successful build so incremental runs can skip unchanged posts.
type buildManifest struct {
	Version     int                     `json:"version"`
	GeneratedAt time.Time               `json:"generated_at"`
	Posts       map[string]manifestPost `json:"posts"`
}

type manifestPost struct {
	Slug      string    `json:"slug"`
	Language  string    `json:"language"`
	Output    string    `json:"output"`
	Checksum  string    `json:"checksum"`
	WrittenAt time.Time `json:"written_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Posts:   map[string]manifestPost{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	var stored struct {
		Version     int            `json:"version"`
		GeneratedAt time.Time      `json:"generated_at"`
		Posts       []manifestPost `json:"posts"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if stored.Version != manifestFileVersion {
		return newBuildManifest(), nil
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = stored.GeneratedAt
	for _, entry := range stored.Posts {
		manifest.setPost(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	// Stable ordering for deterministic output.
	ordered := struct {
		Version     int            `json:"version"`
		GeneratedAt time.Time      `json:"generated_at"`
		Posts       []manifestPost `json:"posts"`
	}{
		Version:     manifestFileVersion,
		GeneratedAt: m.GeneratedAt,
		Posts:       make([]manifestPost, 0, len(m.Posts)),
	}
	for _, entry := range m.Posts {
		ordered.Posts = append(ordered.Posts, entry)
	}
	sort.Slice(ordered.Posts, func(i, j int) bool {
		if ordered.Posts[i].Language == ordered.Posts[j].Language {
			return ordered.Posts[i].Slug < ordered.Posts[j].Slug
		}
		return ordered.Posts[i].Language < ordered.Posts[j].Language
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func postKey(language, slug string) string {
	return strings.ToLower(strings.TrimSpace(language)) + "::" + strings.TrimSpace(slug)
}

func (m *buildManifest) lookupPost(language, slug string) (manifestPost, bool) {
	if m == nil || len(m.Posts) == 0 {
		return manifestPost{}, false
	}
	entry, ok := m.Posts[postKey(language, slug)]
	return entry, ok
}

func (m *buildManifest) setPost(entry manifestPost) {
	if m.Posts == nil {
		m.Posts = map[string]manifestPost{}
	}
	m.Posts[postKey(entry.Language, entry.Slug)] = entry
}

func (m *buildManifest) shouldSkipPost(language, slug, checksum, output string) bool {
	entry, ok := m.lookupPost(language, slug)
	if !ok {
		return false
	}
	return entry.Checksum == checksum && entry.Output == output
}

// prunePosts drops entries for posts that no longer exist.
func (m *buildManifest) prunePosts(keys map[string]struct{}) {
	for key := range m.Posts {
		if _, ok := keys[key]; !ok {
			delete(m.Posts, key)
		}
	}
}

package interfaces

import "context"

// PostMetadata is the validated front matter of a post. Optional fields are
// pointers or empty values when the source file omits them.
type PostMetadata struct {
	Title       string   `json:"title"`
	PublishedAt string   `json:"publishedAt"`
	Summary     string   `json:"summary"`
	Image       string   `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Series      string   `json:"series,omitempty"`
	SeriesOrder *int     `json:"seriesOrder,omitempty"`
	Language    string   `json:"language"`
	Draft       *bool    `json:"draft,omitempty"`
}

// IsDraft reports whether the post is explicitly flagged as a draft.
func (m PostMetadata) IsDraft() bool {
	return m.Draft != nil && *m.Draft
}

// Post is an assembled, rendered blog post. Posts are built on demand and
// never mutated once returned.
type Post struct {
	Slug     string       `json:"slug"`
	Metadata PostMetadata `json:"metadata"`
	Body     string       `json:"body"`
	// Source is the path of the backing file relative to the content root.
	Source string `json:"source,omitempty"`
	// Checksum is the hex encoded SHA-256 of the raw file.
	Checksum string `json:"checksum,omitempty"`
}

// StaticParam identifies one pre-renderable post route.
type StaticParam struct {
	Slug     string `json:"slug"`
	Language string `json:"language"`
}

// PostStore exposes filesystem backed post retrieval keyed by slug and
// language. A missing or rejected post is reported with found == false; err
// is reserved for operational faults.
type PostStore interface {
	ListSlugs(ctx context.Context, language string) ([]string, error)
	GetPost(ctx context.Context, slug, language string) (post *Post, found bool, err error)
	ListPosts(ctx context.Context, language string) ([]*Post, error)
}

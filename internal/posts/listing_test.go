package posts

import (
	"strings"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func post(slug, date string, mutate ...func(*interfaces.PostMetadata)) *interfaces.Post {
	p := &interfaces.Post{Slug: slug, Metadata: interfaces.PostMetadata{Title: slug, PublishedAt: date, Summary: "s"}}
	for _, fn := range mutate {
		fn(&p.Metadata)
	}
	return p
}

func order(n int) func(*interfaces.PostMetadata) {
	return func(md *interfaces.PostMetadata) {
		md.Series = "s"
		md.SeriesOrder = &n
	}
}

func joined(list []*interfaces.Post) string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Slug
	}
	return strings.Join(out, ",")
}

func TestSortByPublishedDesc(t *testing.T) {
	list := []*interfaces.Post{
		post("b", "2023-06-01"),
		post("c", "2024-01-01"),
		post("a", "2024-01-01"),
		post("d", "2024-01-01T08:00:00Z"),
	}
	SortByPublishedDesc(list)
	if got := joined(list); got != "d,a,c,b" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestFilterPublic(t *testing.T) {
	yes, no := true, false
	list := []*interfaces.Post{
		post("a", "2024-01-01", func(md *interfaces.PostMetadata) { md.Draft = &yes }),
		post("b", "2024-01-01", func(md *interfaces.PostMetadata) { md.Draft = &no }),
		post("c", "2024-01-01"),
	}
	if got := joined(FilterPublic(list)); got != "b,c" {
		t.Fatalf("unexpected public posts %s", got)
	}
}

func TestFilterByTagAndTags(t *testing.T) {
	list := []*interfaces.Post{
		post("a", "2024-01-01", func(md *interfaces.PostMetadata) { md.Tags = []string{"Go", "web"} }),
		post("b", "2024-01-01", func(md *interfaces.PostMetadata) { md.Tags = []string{"go"} }),
		post("c", "2024-01-01"),
	}
	if got := joined(FilterByTag(list, "GO")); got != "a,b" {
		t.Fatalf("unexpected tagged posts %s", got)
	}
	if got := strings.Join(Tags(list), ","); got != "Go,web" {
		t.Fatalf("unexpected tags %s", got)
	}
}

func TestFilterSeries(t *testing.T) {
	list := []*interfaces.Post{
		post("late", "2024-03-01", func(md *interfaces.PostMetadata) { md.Series = "s" }),
		post("second", "2024-01-01", order(2)),
		post("other", "2024-01-01"),
		post("first", "2024-02-01", order(1)),
		post("early", "2023-01-01", func(md *interfaces.PostMetadata) { md.Series = "s" }),
	}
	if got := joined(FilterSeries(list, "s")); got != "first,second,late,early" {
		t.Fatalf("unexpected series order %s", got)
	}
	if got := FilterSeries(list, ""); len(got) != 0 {
		t.Fatalf("empty series should match nothing, got %s", joined(got))
	}
}

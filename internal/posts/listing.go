package posts

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// SortByPublishedDesc orders posts newest first. Equal dates fall back to the
// slug so listings are stable across runs.
func SortByPublishedDesc(list []*interfaces.Post) {
	slices.SortStableFunc(list, func(a, b *interfaces.Post) int {
		if c := publishedAt(b).Compare(publishedAt(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
}

// FilterPublic returns the posts not flagged as drafts.
func FilterPublic(list []*interfaces.Post) []*interfaces.Post {
	out := make([]*interfaces.Post, 0, len(list))
	for _, post := range list {
		if !post.Metadata.IsDraft() {
			out = append(out, post)
		}
	}
	return out
}

// FilterByTag keeps posts carrying tag, compared case insensitively.
func FilterByTag(list []*interfaces.Post, tag string) []*interfaces.Post {
	out := make([]*interfaces.Post, 0, len(list))
	for _, post := range list {
		if slices.ContainsFunc(post.Metadata.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
			out = append(out, post)
		}
	}
	return out
}

// FilterSeries keeps the posts of series ordered by seriesOrder. Posts
// without an order come last, newest first among themselves.
func FilterSeries(list []*interfaces.Post, series string) []*interfaces.Post {
	var out []*interfaces.Post
	for _, post := range list {
		if post.Metadata.Series != "" && post.Metadata.Series == series {
			out = append(out, post)
		}
	}
	slices.SortStableFunc(out, func(a, b *interfaces.Post) int {
		ao, bo := a.Metadata.SeriesOrder, b.Metadata.SeriesOrder
		switch {
		case ao != nil && bo != nil && *ao != *bo:
			return cmp.Compare(*ao, *bo)
		case ao != nil && bo == nil:
			return -1
		case ao == nil && bo != nil:
			return 1
		}
		return publishedAt(b).Compare(publishedAt(a))
	})
	return out
}

// Tags returns every distinct tag in list, sorted.
func Tags(list []*interfaces.Post) []string {
	seen := map[string]struct{}{}
	var tags []string
	for _, post := range list {
		for _, tag := range post.Metadata.Tags {
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, tag)
		}
	}
	slices.SortFunc(tags, func(a, b string) int { return cmp.Compare(strings.ToLower(a), strings.ToLower(b)) })
	return tags
}

func publishedAt(post *interfaces.Post) time.Time {
	t, err := markdown.ParseDate(post.Metadata.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

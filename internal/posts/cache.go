package posts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	postKeyPrefix    = "post"
	listingKeyPrefix = "list"
)

func postKey(lang, slug, checksum string) string {
	return fmt.Sprintf("%s:%s:%s:%s", postKeyPrefix, lang, slug, checksum)
}

func listingKey(lang, fingerprint string) string {
	return fmt.Sprintf("%s:%s:%s", listingKeyPrefix, lang, fingerprint)
}

// fingerprint hashes the name, size and modification time of every entry,
// so any added, removed or touched file produces a new listing key.
func (s *Store) fingerprint(entries []fs.DirEntry) (string, error) {
	h := sha256.New()
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", entry.Name(), info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Invalidate drops every cached post and listing.
func (s *Store) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

func (s *Store) cachedPost(ctx context.Context, key string) (*interfaces.Post, bool) {
	var post interfaces.Post
	if !s.cacheGet(ctx, key, &post) {
		return nil, false
	}
	return &post, true
}

func (s *Store) storePost(ctx context.Context, key string, post *interfaces.Post) {
	s.cacheSet(ctx, key, post)
}

func (s *Store) cachedList(ctx context.Context, key string) ([]*interfaces.Post, bool) {
	var list []*interfaces.Post
	if !s.cacheGet(ctx, key, &list) {
		return nil, false
	}
	return list, true
}

func (s *Store) storeList(ctx context.Context, key string, list []*interfaces.Post) {
	s.cacheSet(ctx, key, list)
}

// cacheGet decodes the JSON stored under key into out. Misses and backend
// failures both count as a miss; failures are logged.
func (s *Store) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.WithContext(ctx).Warn("posts.cache.get_failed", "key", key, "error", err)
		}
		return false
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.WithContext(ctx).Warn("posts.cache.decode_failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.WithContext(ctx).Warn("posts.cache.encode_failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.WithContext(ctx).Warn("posts.cache.set_failed", "key", key, "error", err)
	}
}

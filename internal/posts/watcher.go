package posts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch clears the store's cache whenever a file under root changes. It
// watches root and its language directories and blocks until ctx is done.
// root must be the directory the store's filesystem was opened on.
func (s *Store) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("posts: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("posts: watch %s: %w", root, err)
	}
	for _, lang := range s.registry.Languages() {
		s.watchDir(watcher, filepath.Join(root, lang.Code))
	}

	logger := s.logger.WithContext(ctx)
	logger.Info("posts.watch.started", "root", root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// a language directory created after startup
				s.watchDir(watcher, event.Name)
			}
			if err := s.Invalidate(ctx); err != nil {
				logger.Warn("posts.watch.invalidate_failed", "error", err)
				continue
			}
			logger.Debug("posts.watch.invalidated", "path", event.Name, "op", event.Op.String())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("posts.watch.error", "error", err)
		}
	}
}

func (s *Store) watchDir(watcher *fsnotify.Watcher, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := watcher.Add(dir); err != nil {
		s.logger.Warn("posts.watch.add_failed", "path", dir, "error", err)
	}
}

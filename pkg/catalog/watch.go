package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/mailcanvas/pkg/logger"
)

// Watch invalidates cached templates when files in the directories of the
// catalog's local entries change. baseDir is the root the entry paths are
// relative to. Watch blocks until ctx is done.
func (r *Resolver) Watch(ctx context.Context, baseDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}

	watched := map[string]bool{}
	for _, e := range r.catalog.Entries() {
		if isRemote(e.File) {
			continue
		}
		dir := filepath.Dir(filepath.Join(absBase, filepath.FromSlash(e.File)))
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			r.log.WarnContext(ctx, "cannot watch template dir",
				logger.Event("watch"),
				logger.Error(err),
			)
			continue
		}
		watched[dir] = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(absBase, abs)
			if err != nil {
				continue
			}
			r.Invalidate(filepath.ToSlash(rel))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.WarnContext(ctx, "template watcher error",
				logger.Event("watch"),
				logger.Error(err),
			)
		}
	}
}

package session

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lumelang/lume"
)

// debounceWindow is how long a changed file is held back before its event is
// delivered. Changes within one window collapse into a single event.
const debounceWindow = time.Second

// Watch recursively watches root for lume source changes and delivers
// FileEvents on the events channel, with paths relative to root. Existing
// source files are replayed as events first, so a fresh session sees the
// whole project. Watch blocks until ctx is cancelled or the watcher fails.
func Watch(ctx context.Context, root string, events chan<- SourceEvent, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, file := range ScanSources(root) {
		select {
		case events <- FileEvent{Path: file}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err = watchRecursive(watcher, root)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(debounceWindow)
	defer ticker.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			// New directories join the watch so nested sources are seen.
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := watchRecursive(watcher, ev.Name); err != nil {
					log.Warn("watch directory", zap.String("dir", ev.Name), zap.Error(err))
				}

				continue
			}

			if filepath.Ext(ev.Name) != lume.SourceExt {
				continue
			}

			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}

			pending[rel] = struct{}{}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Warn("watcher error", zap.Error(err))
		case <-ticker.C:
			for file := range pending {
				select {
				case events <- FileEvent{Path: file}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			clear(pending)
		}
	}
}

// ScanSources lists the lume source files under root, relative to root.
func ScanSources(root string) []string {
	var files []string

	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != lume.SourceExt {
			return nil //nolint:nilerr // unreadable entries are skipped
		}

		if rel, err := filepath.Rel(root, p); err == nil {
			files = append(files, rel)
		}

		return nil
	})

	return files
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(p)
		}

		return nil
	})
}

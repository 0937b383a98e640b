package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces the burst of events editors emit for a single save.
const watchSettle = 100 * time.Millisecond

// Watch calls onChange after path is written, created, renamed or removed,
// until ctx is cancelled. The parent directory is watched so atomic-rename
// saves are observed.
func Watch(ctx context.Context, path string, onChange func()) error {
	if onChange == nil {
		return fmt.Errorf("watch config: nil change callback")
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config dir %q: %w", dir, err)
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				settle = time.After(watchSettle)
			}
		case <-settle:
			settle = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch config: %w", err)
		}
	}
}

package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "inkdash/internal/log"
)

const watchDebounce = 500 * time.Millisecond

// Watch monitors the config file and calls onReload with the freshly
// loaded config after each change. Editors and atomic writers replace the
// file via rename, so the path is re-added to the watcher after rename or
// remove events. Reload failures keep the previous config in effect.
//
// Watch blocks until ctx is canceled.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	var debounce *time.Timer
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			appLog.Error("config reload failed, keeping previous config", err, "path", path)
			return
		}
		appLog.Info("config reloaded", "path", path)
		onReload(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				// The watched inode is gone after an atomic replace; give
				// the writer a moment to finish, then re-watch the path.
				go func() {
					time.Sleep(100 * time.Millisecond)
					if err := watcher.Add(path); err != nil {
						appLog.Error("config re-watch failed", err, "path", path)
					}
				}()
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, reload)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLog.Error("config watcher error", werr, "path", path)
		}
	}
}

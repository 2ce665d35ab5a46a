package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch re-converts each input file whenever it changes. Events are
// debounced per file so editors that save in bursts trigger a single
// conversion. Blocks until ctx is cancelled.
func (c *Converter) Watch(ctx context.Context, paths []string, history History) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories: editors replace files on save, which
	// drops a direct file watch.
	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	c.logger.Info("watching for changes", slog.Int("paths", len(watched)))

	timers := make(map[string]*time.Timer)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !watched[event.Name] {
				continue
			}

			path := event.Name
			if t := timers[path]; t != nil {
				t.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				c.logger.Info("change detected", slog.String("source", path))
				if _, err := c.ConvertPath(ctx, path, "", history); err != nil {
					c.logger.Error("reconvert failed",
						slog.String("source", path),
						slog.String("error", err.Error()))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

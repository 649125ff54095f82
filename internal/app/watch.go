package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/notify"
)

// watchDebounce batches the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watch compiles the configured files, then recompiles them whenever a
// graph file in their directories changes, until ctx is cancelled.
// Compilation errors are logged and do not stop the watch.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for _, p := range a.config.Paths {
		dir := p
		if info, err := os.Stat(p); err != nil {
			return fmt.Errorf("error accessing path %s: %w", p, err)
		} else if !info.IsDir() {
			dir = filepath.Dir(p)
		}
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	var notifier notify.Notifier = notify.Nop{}
	if a.config.NotifyURL != "" {
		sio, err := notify.DialSocketIO(ctx, a.config.NotifyURL, notify.Options{Event: a.config.NotifyEvent})
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", a.config.NotifyURL, err)
		}
		notifier = sio
	}
	defer notifier.Close()

	recompile := func() {
		err := a.compileFiles(ctx)
		if err != nil {
			logger.Error("Compilation failed.", "error", err)
		}
		if nerr := notifier.Notify(ctx, notify.NewEvent(a.config.Paths, err)); nerr != nil {
			logger.Warn("Failed to send notification.", "error", nerr)
		}
	}
	recompile()
	logger.Info("Watching for changes.", "dirs", len(dirs))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isGraphFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("Graph file changed.", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		case <-fire:
			fire = nil
			recompile()
		}
	}
}

func isGraphFile(name string) bool {
	switch filepath.Ext(name) {
	case ".hcl", ".yaml", ".yml":
		return true
	}
	return false
}

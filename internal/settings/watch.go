package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/verte-zerg/typetrack/internal/config"
)

const reloadDebounce = 100 * time.Millisecond

// WatchFile reloads the config file whenever it changes and pushes the new
// overlay values through Apply. It returns once the watcher is running; the
// watch stops when ctx is done.
func (m *Manager) WatchFile(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		if cerr := watcher.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	go m.watchLoop(ctx, watcher, path)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer func() {
		if err := watcher.Close(); err != nil {
			m.log.Warn("failed to close config watcher", "err", err)
		}
	}()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				m.reloadFile(path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn("config watcher error", "err", err)
		}
	}
}

func (m *Manager) reloadFile(path string) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		m.log.Warn("keeping previous settings, config reload failed", "path", path, "err", err)
		return
	}
	m.Apply(cfg.Overlay.Values())
}

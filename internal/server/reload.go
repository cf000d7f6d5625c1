package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/riskgate/internal/model"
)

// reloadDebounce is how long the reloader waits after the last write.
const reloadDebounce = 500 * time.Millisecond

// Reloader watches the rule base file for changes and triggers hot-reload.
// The parent directory is watched rather than the file, so replacing the
// file by rename (editors, config management, symlink swaps) still
// triggers a reload.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	paths   []string
	targets map[string]bool
	log     *slog.Logger
}

// NewReloader creates a file watcher for the given paths. Empty and
// missing paths are skipped; the embedded default never changes.
func NewReloader(server *Server, paths []string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	var watched []string
	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		clean := filepath.Clean(p)
		dir := filepath.Dir(clean)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
			}
			dirs[dir] = true
		}
		targets[clean] = true
		watched = append(watched, p)
	}

	return &Reloader{
		watcher: watcher,
		server:  server,
		paths:   watched,
		targets: targets,
		log:     server.log,
	}, nil
}

// triggers reports whether event changes one of the watched rule files.
func (r *Reloader) triggers(event fsnotify.Event) bool {
	if !r.targets[filepath.Clean(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Paths returns the files actually being watched.
func (r *Reloader) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Run watches for file changes and reloads the rule base. Blocks until ctx
// is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if r.triggers(event) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("file watcher error", "error", err)
		}
	}
}

func (r *Reloader) reload() {
	if err := r.server.ReloadRuleBase(); err != nil {
		r.log.Error("hot-reload failed, keeping previous rule base",
			"outcome", model.Outcome(err), "error", err, "values", model.ErrorValues(err))
		return
	}
	r.log.Info("hot-reload: rule base reloaded")
}

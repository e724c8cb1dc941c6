package mcp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches the policy file for changes and triggers hot-reload.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	path    string
}

// NewReloader creates a file watcher for the policy path. A missing or
// empty path yields a no-op reloader.
func NewReloader(server *Server, path string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := ""
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := watcher.Add(path); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", path, err)
			}
			watched = path
		}
	}

	return &Reloader{
		watcher: watcher,
		server:  server,
		path:    watched,
	}, nil
}

// Run watches for file changes and reloads policy. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
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
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.server.ReloadPolicy(); err != nil {
						fmt.Fprintf(os.Stderr, "hot-reload failed: %v\n", err)
					} else {
						fmt.Fprintf(os.Stderr, "hot-reload: policy reloaded\n")
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "file watcher error: %v\n", err)
		}
	}
}

package policy

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceMs = 200

// Watcher watches the config file and invokes a callback with the
// reloaded Config whenever it changes on disk. A config that fails to
// parse is skipped so a half-written file never clobbers a running
// server.
type Watcher struct {
	path     string
	onReload func(*Config)
	logger   *log.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
	watcher       *fsnotify.Watcher
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewWatcher creates a config watcher. onReload is called from a watcher
// goroutine with each successfully reloaded config.
func NewWatcher(path string, onReload func(*Config), logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		path:     path,
		onReload: onReload,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start watches the config file's directory. Returns when ctx is
// cancelled or Stop is called. If fsnotify fails to initialize, the
// watcher exits and the running config stays in effect.
func (w *Watcher) Start(ctx context.Context) {
	defer close(w.doneCh)

	watchDir := filepath.Dir(w.path)
	configName := filepath.Base(w.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Printf("[config] fsnotify init failed, live reload disabled: %v", err)
		return
	}
	defer watcher.Close()
	if err := watcher.Add(watchDir); err != nil {
		w.logger.Printf("[config] fsnotify add %s failed, live reload disabled: %v", watchDir, err)
		return
	}
	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.triggerDebounced()
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop signals the watcher to stop and waits for it to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) triggerDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(defaultDebounceMs*time.Millisecond, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Printf("[config] reload skipped: %v", err)
		return
	}
	w.logger.Printf("[config] reloaded %s", w.path)
	w.onReload(cfg)
}

package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
)

// DefaultWatchDebounce collapses the burst of events an editor save makes.
const DefaultWatchDebounce = 100 * time.Millisecond

// DefinitionWatcher reloads the graph definition when its file changes and
// hands valid results to the registered callbacks. A reload that fails to
// parse keeps the current graph.
type DefinitionWatcher struct {
	path     string
	loader   *graph.Loader
	logger   *zap.Logger
	debounce time.Duration

	mu        sync.RWMutex
	current   *graph.Graph
	callbacks []func(*graph.Graph, []error)

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	done    chan struct{}
}

// NewDefinitionWatcher prepares a watcher for path starting from current.
// Nothing is watched until Start.
func NewDefinitionWatcher(path string, current *graph.Graph, loader *graph.Loader, logger *zap.Logger) *DefinitionWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionWatcher{
		path:     filepath.Clean(path),
		loader:   loader,
		logger:   logger,
		debounce: DefaultWatchDebounce,
		current:  current,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetDebounce changes the quiet period. Call before Start.
func (w *DefinitionWatcher) SetDebounce(d time.Duration) { w.debounce = d }

// Start begins watching. The containing directory is watched so that
// editors which replace the file by rename are still seen.
func (w *DefinitionWatcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = fsw
	go w.watchLoop()

	w.logger.Info("Watching graph definition", zap.String("file", w.path))
	return nil
}

func (w *DefinitionWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("Graph definition changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()))

			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, w.Reload)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

// Reload reads the definition now. On success the new graph becomes current
// and every callback runs with it and its configuration issues.
func (w *DefinitionWatcher) Reload() {
	g, issues, err := w.loader.LoadFile(w.path)
	if err != nil {
		w.logger.Error("Invalid graph definition after edit, keeping the current one",
			zap.String("file", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = g
	callbacks := make([]func(*graph.Graph, []error), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(g, issues)
	}
	w.logger.Info("Graph definition reloaded",
		zap.Int("nodes", g.Len()),
		zap.Int("issues", len(issues)),
		zap.Int("callbacks_notified", len(callbacks)))
}

// OnChange registers a callback for successful reloads.
func (w *DefinitionWatcher) OnChange(cb func(*graph.Graph, []error)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.mu.Unlock()
}

// Current returns the latest valid graph.
func (w *DefinitionWatcher) Current() *graph.Graph {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop ends watching and cancels a pending reload. It is safe to call
// whether or not Start succeeded.
func (w *DefinitionWatcher) Stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if w.watcher == nil {
		return
	}
	select {
	case <-w.stopCh:
		return
	default:
		close(w.stopCh)
	}
	<-w.done
}

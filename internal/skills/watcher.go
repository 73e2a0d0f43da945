package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"muse/internal/logging"
)

// Watcher reloads the skills manager when SKILL.md files change on disk,
// so edits to craft guidance take effect without restarting the agent.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	manager *Manager

	pending     bool
	lastEvent   time.Time
	debounceDur time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher over the manager's skills directory.
func NewWatcher(manager *Manager) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		manager:     manager,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; a missing skills directory is not
// fatal, it just means nothing to watch yet.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.manager.dir); err != nil {
		logging.Get(logging.CategorySkills).Warn("skills watch failed (dir may not exist): %v", err)
	} else {
		logging.Skills("watching skills directory: %s", w.manager.dir)
		// Watch existing skill directories so SKILL.md edits are seen.
		if entries, err := os.ReadDir(w.manager.dir); err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					_ = w.watcher.Add(filepath.Join(w.manager.dir, entry.Name()))
				}
			}
		}
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategorySkills).Error("error closing skills watcher: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategorySkills).Error("skills watcher error: %v", err)

		case <-ticker.C:
			w.maybeReload()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New skill directories appear as Create events on the root watch.
	// Watch them so their SKILL.md edits are seen too.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				logging.Get(logging.CategorySkills).Warn("failed to watch new skill dir %s: %v", event.Name, err)
			}
			w.markPending()
			return
		}
	}

	if !strings.HasSuffix(event.Name, "SKILL.md") {
		return
	}
	w.markPending()
}

func (w *Watcher) markPending() {
	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// maybeReload reloads once events have settled past the debounce window.
func (w *Watcher) maybeReload() {
	w.mu.Lock()
	due := w.pending && time.Since(w.lastEvent) >= w.debounceDur
	if due {
		w.pending = false
	}
	w.mu.Unlock()

	if !due {
		return
	}
	if err := w.manager.Reload(); err != nil {
		logging.Get(logging.CategorySkills).Error("skills reload failed: %v", err)
		return
	}
	logging.Skills("skills reloaded after change")
}

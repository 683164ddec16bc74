// Package watcher polls the project tree for Dart/YAML source changes and
// reports them as debounced file-change notifications (spec §4.8). No
// fsnotify-equivalent dependency appears anywhere in the reference corpus,
// so this is a deliberate stdlib-only component: a ticker-driven walk
// comparing os.Stat mtimes.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// DebounceInterval is the minimum spacing between two emitted
// notifications, coalescing bursts of saves from an editor or formatter.
const DebounceInterval = 200 * time.Millisecond

// pollInterval is how often the tree is walked looking for changed mtimes.
// It's deliberately shorter than DebounceInterval so a change is never
// detected later than one debounce window after it happens.
const pollInterval = 75 * time.Millisecond

var watchedSuffixes = []string{".dart", ".yaml", ".yml"}

// MessageSink receives FileChanged notifications, normally an
// *engine.Engine's Send method.
type MessageSink interface {
	Send(protocol.Message)
}

// Watcher walks root on a fixed interval, diffing file mtimes against the
// previous walk and emitting one debounced MsgFileChanged per burst.
type Watcher struct {
	root string
	sink MessageSink

	mu      sync.Mutex
	mtimes  map[string]time.Time
	lastHit time.Time
}

// New constructs a watcher rooted at root, reporting through sink.
func New(root string, sink MessageSink) *Watcher {
	return &Watcher{root: root, sink: sink, mtimes: make(map[string]time.Time)}
}

// Run walks the tree every pollInterval until ctx is cancelled. The first
// walk only seeds the mtime baseline; no notification fires until a
// subsequent walk observes a change.
func (w *Watcher) Run(ctx context.Context) {
	w.seed()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) seed() {
	_ = w.walk(func(path string, mtime time.Time) {
		w.mu.Lock()
		w.mtimes[path] = mtime
		w.mu.Unlock()
	})
}

func (w *Watcher) poll() {
	var changed string
	_ = w.walk(func(path string, mtime time.Time) {
		w.mu.Lock()
		prev, known := w.mtimes[path]
		w.mtimes[path] = mtime
		w.mu.Unlock()
		if !known || mtime.After(prev) {
			changed = path
		}
	})
	if changed == "" {
		return
	}

	w.mu.Lock()
	since := time.Since(w.lastHit)
	if since < DebounceInterval {
		w.mu.Unlock()
		return
	}
	w.lastHit = time.Now()
	w.mu.Unlock()

	w.sink.Send(protocol.NewMessage(protocol.MsgFileChanged, "", protocol.FileChangedPayload{Path: changed}))
}

// walk visits every watched file under root, invoking fn with its path and
// mtime. Hidden directories and common build/output trees are skipped to
// keep each poll cheap on a real Flutter project.
func (w *Watcher) walk(fn func(path string, mtime time.Time)) error {
	return filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if name != "." && (strings.HasPrefix(name, ".") || name == "build" || name == ".dart_tool") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isWatched(info.Name()) {
			return nil
		}
		fn(path, info.ModTime())
		return nil
	})
}

func isWatched(name string) bool {
	if name == "pubspec.yaml" {
		return true
	}
	for _, suffix := range watchedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

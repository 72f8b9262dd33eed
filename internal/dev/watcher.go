package dev

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeComponent ChangeType = iota
	ChangeScript
	ChangeStyle
	ChangeMock
	ChangeOther
)

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch recursively.
	Paths []string

	// Ignore patterns to skip (doublestar globs, matched against the
	// slash-normalized path and the base name).
	Ignore []string

	// Debounce is the quiet period before changes are reported.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"**/*.tmp",
	"**/*.swp",
	"**/*~",
}

// Watcher monitors directories for changes using fsnotify, coalescing
// bursts of events into one callback batch per debounce window.
type Watcher struct {
	config   WatcherConfig
	fsw      *fsnotify.Watcher
	onChange func([]Change)

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{config: config, fsw: fsw}, nil
}

// OnChange sets the callback for change batches.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, root := range w.config.Paths {
		w.addRecursive(root)
	}

	pending := make(map[string]Change)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		w.mu.Lock()
		callback := w.onChange
		w.mu.Unlock()

		changes := make([]Change, 0, len(pending))
		for _, c := range pending {
			changes = append(changes, c)
		}
		pending = make(map[string]Change)
		timerC = nil

		if callback != nil && len(changes) > 0 {
			callback(changes)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			// New directories join the watch set immediately so files
			// created inside them are seen.
			if event.Op.Has(fsnotify.Create) {
				w.addRecursive(event.Name)
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				pending[event.Name] = Change{Path: event.Name, Type: classifyChange(event.Name)}
				if timer == nil {
					timer = time.NewTimer(w.config.Debounce)
				} else {
					timer.Reset(w.config.Debounce)
				}
				timerC = timer.C
			}
		case <-timerC:
			flush()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// addRecursive watches path and every directory below it. Non-directories
// and ignored paths are skipped silently.
func (w *Watcher) addRecursive(root string) {
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		w.fsw.Add(p)
		return nil
	})
}

func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if ok, _ := doublestar.Match(pattern, normalized); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// classifyChange determines the type of change based on file extension.
func classifyChange(path string) ChangeType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".van":
		return ChangeComponent
	case ".ts", ".tsx", ".js", ".jsx":
		return ChangeScript
	case ".css":
		return ChangeStyle
	case ".json":
		return ChangeMock
	default:
		return ChangeOther
	}
}

// Package watcher watches documentation source trees and reports debounced
// batches of changed files.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/dmdoc/internal/log"
)

// Change describes one source file that was written or removed.
type Change struct {
	Root    string // watched root the file lives under, as configured
	Rel     string // slash-separated path relative to Root
	Removed bool
}

// Watcher monitors source roots and sends batches of changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	match     func(name string) bool
	debounce  time.Duration
	onChange  chan []Change
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Roots       []string
	Match       func(name string) bool // nil matches every file
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:       roots,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a new source watcher.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("no roots to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	match := cfg.Match
	if match == nil {
		match = func(string) bool { return true }
	}

	return &Watcher{
		fsWatcher: fsw,
		roots:     cfg.Roots,
		match:     match,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan []Change, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching every root recursively. Hidden directories are skipped.
// Returns a channel that receives one batch per debounce window.
func (w *Watcher) Start() (<-chan []Change, error) {
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return nil, err
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watching directory %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			return fmt.Errorf("watching directory %s: %w", p, err)
		}
		return nil
	})
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]bool) // path -> removed
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Warn(log.CatWatcher, "Failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			removed, relevant := w.classify(event)
			if !relevant {
				continue
			}
			pending[event.Name] = removed

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			timer = nil
			if len(pending) == 0 {
				continue
			}
			batch := w.batch(pending)
			pending = make(map[string]bool)
			log.Debug(log.CatWatcher, "Source changes", "files", len(batch))
			select {
			case w.onChange <- batch:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "Watcher error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// classify reports whether event concerns a source file and whether that
// file is gone.
func (w *Watcher) classify(event fsnotify.Event) (removed, relevant bool) {
	if !w.match(filepath.Base(event.Name)) {
		return false, false
	}
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return true, true
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return false, true
	}
	return false, false
}

// batch maps pending paths onto their roots, sorted by root then path.
func (w *Watcher) batch(pending map[string]bool) []Change {
	out := make([]Change, 0, len(pending))
	for name, removed := range pending {
		root, rel, ok := w.locate(name)
		if !ok {
			continue
		}
		out = append(out, Change{Root: root, Rel: rel, Removed: removed})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Root != out[j].Root {
			return out[i].Root < out[j].Root
		}
		return out[i].Rel < out[j].Rel
	})
	return out
}

func (w *Watcher) locate(name string) (root, rel string, ok bool) {
	for _, r := range w.roots {
		p, err := filepath.Rel(r, name)
		if err != nil || p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
			continue
		}
		return r, filepath.ToSlash(p), true
	}
	return "", "", false
}

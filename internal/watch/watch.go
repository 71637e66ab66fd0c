// Package watch reports edits to the mask, overlay and config files so a
// running host can rebuild the nav grid between ticks.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of writes an editor makes on save.
const DefaultDebounce = 100 * time.Millisecond

// Kind says which input changed.
type Kind int

const (
	MaskChanged Kind = iota
	OverlayChanged
	ConfigChanged
)

func (k Kind) String() string {
	switch k {
	case MaskChanged:
		return "mask"
	case OverlayChanged:
		return "overlay"
	case ConfigChanged:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Target is one file to watch.
type Target struct {
	Kind Kind
	Path string
}

// Event is a settled change to a watched file.
type Event struct {
	Kind Kind
	Path string
}

// Watcher watches the parent directories of its targets, so files replaced
// by rename are still seen. Events and Errors are closed after Close.
type Watcher struct {
	watcher  *fsnotify.Watcher
	targets  map[string]Kind
	debounce time.Duration
	Events   chan Event
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// New starts watching targets. Targets with an empty path are skipped.
func New(debounce time.Duration, targets ...Target) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher := &Watcher{
		watcher:  w,
		targets:  make(map[string]Kind),
		debounce: debounce,
		Events:   make(chan Event, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, t := range targets {
		if t.Path == "" {
			continue
		}
		abs, err := filepath.Abs(t.Path)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		watcher.targets[abs] = t.Kind
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]Kind)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			kind, ok := w.targets[abs]
			if !ok {
				continue
			}
			pending[abs] = kind
			timer.Reset(w.debounce)
		case <-timer.C:
			for path, kind := range pending {
				select {
				case w.Events <- Event{Kind: kind, Path: path}:
				case <-w.closeCh:
					return
				}
			}
			clear(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

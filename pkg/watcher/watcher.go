// Package watcher reports changes to a deck file so the presentation can
// reload it live. It prefers fsnotify and falls back to stat polling on
// remote filesystems or when PW_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/pitchwalk/pkg/debug"
)

// DefaultPollInterval is the stat interval used in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved = errors.New("watched file was removed")
	ErrPermission  = errors.New("permission denied")
	ErrRunning     = errors.New("watcher already running")
)

// Event is one settled change notification. Err is set when the file
// disappeared or could not be read; the watcher keeps running either way.
type Event struct {
	Path string
	Err  error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before an event fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithForcePoll skips fsnotify entirely.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors a single file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool

	events chan Event

	mu      sync.Mutex
	running bool
	polling bool
	fsType  FilesystemType
}

// New creates a watcher for path. Nothing is watched until Run is called.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		events:       make(chan Event, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	return w, nil
}

// Events delivers debounced change notifications. Pending events are
// coalesced: a slow reader sees at most one queued event.
func (w *Watcher) Events() <-chan Event { return w.events }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// Polling reports whether the current run uses stat polling.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// FilesystemType is the classification made when Run started.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsType
}

// Run watches until ctx is cancelled and then returns nil. It may be called
// again after it returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool("PW_FORCE_POLL") || isRemoteFilesystem(w.fsType)
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	deb := NewDebouncer(w.debounce)
	defer deb.Cancel()

	if !w.Polling() {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// The directory is watched so editors that replace the file
			// atomically are still seen.
			if err = fsw.Add(filepath.Dir(w.path)); err == nil {
				defer fsw.Close()
				debug.Log("watcher: fsnotify on %s (%s)", w.path, w.FilesystemType())
				return w.watchNotify(ctx, fsw, deb)
			}
			fsw.Close()
		}
		debug.Log("watcher: fsnotify unavailable for %s: %v", w.path, err)
		w.mu.Lock()
		w.polling = true
		w.mu.Unlock()
	}

	debug.Log("watcher: polling %s every %s", w.path, w.pollInterval)
	return w.watchPoll(ctx, deb)
}

func (w *Watcher) watchNotify(ctx context.Context, fsw *fsnotify.Watcher, deb *Debouncer) error {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.emit(ctx, Event{Path: w.path, Err: ErrFileRemoved})
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				deb.Trigger(func() { w.emit(ctx, Event{Path: w.path}) })
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.emit(ctx, Event{Path: w.path, Err: err})
		}
	}
}

func (w *Watcher) watchPoll(ctx context.Context, deb *Debouncer) error {
	var lastMtime time.Time
	var lastSize int64
	if info, err := os.Stat(w.path); err == nil {
		lastMtime, lastSize = info.ModTime(), info.Size()
	} else if os.IsPermission(err) {
		return ErrPermission
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				switch {
				case os.IsNotExist(err):
					if !lastMtime.IsZero() {
						lastMtime, lastSize = time.Time{}, 0
						w.emit(ctx, Event{Path: w.path, Err: ErrFileRemoved})
					}
				case os.IsPermission(err):
					w.emit(ctx, Event{Path: w.path, Err: ErrPermission})
				default:
					w.emit(ctx, Event{Path: w.path, Err: err})
				}
				continue
			}
			if info.ModTime().After(lastMtime) || info.Size() != lastSize {
				lastMtime, lastSize = info.ModTime(), info.Size()
				deb.Trigger(func() { w.emit(ctx, Event{Path: w.path}) })
			}
		}
	}
}

// emit replaces any unread event with ev.
func (w *Watcher) emit(ctx context.Context, ev Event) {
	if ctx.Err() != nil {
		return
	}
	for {
		select {
		case w.events <- ev:
			return
		default:
		}
		select {
		case <-w.events:
		default:
		}
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Package watch regenerates documentation when configuration or templates
// change.
//
// Every change triggers a full rebuild. Bursts of file events are debounced
// into one request, and rebuilds run one at a time on a single worker; a
// request arriving while a rebuild runs is coalesced into exactly one
// follow-up.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
)

// DefaultDebounce is the quiet window after the last file event.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc performs one full regeneration. reason describes the trigger.
type RebuildFunc func(ctx context.Context, reason string)

// Options configures a Watcher.
type Options struct {
	// Paths are watched recursively. Missing paths are skipped with a warning.
	Paths []string
	// Ignore lists directories whose events never trigger a rebuild, such as
	// the output directory.
	Ignore   []string
	Debounce time.Duration
	// Interval schedules additional periodic rebuilds; zero disables them.
	Interval time.Duration
	Rebuild  RebuildFunc
}

// Watcher turns file system events into serialized rebuilds.
type Watcher struct {
	opts     Options
	watcher  *fsnotify.Watcher
	requests chan string
	ignore   []string
}

// New creates a Watcher.
func New(opts Options) (*Watcher, error) {
	if opts.Rebuild == nil {
		return nil, foundation.UsageError("rebuild function is required").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ignore := make([]string, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignore = append(ignore, abs)
		}
	}

	return &Watcher{
		opts:     opts,
		watcher:  fw,
		requests: make(chan string, 1),
		ignore:   ignore,
	}, nil
}

// Trigger requests a rebuild. It never blocks; a request made while another
// one is pending is merged into it.
func (w *Watcher) Trigger(reason string) {
	select {
	case w.requests <- reason:
	default:
		slog.Debug("Rebuild already pending", slog.String("reason", reason))
	}
}

// Run builds once, then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	for _, root := range w.opts.Paths {
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}

	workerCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(workerCtx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	if w.opts.Interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.SchedulePeriodicRebuild(w.opts.Interval, func() { w.Trigger("interval") }); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	w.Trigger("startup")
	slog.Info("Watching for changes", logfields.Count(len(w.opts.Paths)))
	return w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) error {
	var debounce <-chan time.Time
	var lastChange string

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.Relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			lastChange = event.Name
			debounce = time.After(w.opts.Debounce)
		case <-debounce:
			debounce = nil
			w.Trigger("changed: " + lastChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.requests:
			slog.Info("Rebuilding documentation", slog.String("reason", reason))
			w.opts.Rebuild(ctx, reason)
		}
	}
}

// Relevant reports whether event should cause a rebuild. Attribute-only
// changes, editor scratch files and ignored directories are filtered out.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if isScratchFile(filepath.Base(event.Name)) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return true
	}
	return !w.ignored(abs)
}

func isScratchFile(name string) bool {
	return strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".swx") ||
		strings.HasSuffix(name, ".tmp") ||
		strings.HasPrefix(name, ".#")
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		slog.Warn("Watch path not found, skipping", logfields.Path(root))
		return nil
	}
	if !info.IsDir() {
		return w.watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && w.ignored(abs) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(abs string) bool {
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/stylebuilder/internal/build"
	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Loop.
type Options struct {
	// Dirs are watched recursively.
	Dirs []string
	// Files are watched individually through their parent directory.
	Files []string
	// Exclude lists directories whose events never trigger a rebuild,
	// typically the destination when it lives inside a source root.
	Exclude []string

	Debounce time.Duration
	// Interval triggers periodic rebuilds when positive.
	Interval time.Duration
}

// OptionsFor derives watch targets from a configuration.
func OptionsFor(cfg *config.Config, destination string) Options {
	if destination == "" {
		destination = cfg.Destination
	}
	dirs := make([]string, 0, len(cfg.Source)+1)
	dirs = append(dirs, cfg.Source...)
	dirs = append(dirs, cfg.Builder)
	return Options{
		Dirs:     dirs,
		Files:    []string{cfg.StyleGuide},
		Exclude:  []string{destination},
		Debounce: cfg.Watch.Debounce,
		Interval: cfg.Watch.Interval,
	}
}

// Loop rebuilds the style guide whenever watched inputs change. At most
// one rebuild runs at a time and at most one more is kept pending.
type Loop struct {
	svc  build.BuildService
	req  build.BuildRequest
	opts Options

	files   map[string]bool
	exclude []string

	// OnBuild, when set, observes every completed rebuild.
	OnBuild func(*build.BuildResult, error)
}

// New creates a watch loop that runs req through svc.
func New(svc build.BuildService, req build.BuildRequest, opts Options) *Loop {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	l := &Loop{svc: svc, req: req, opts: opts, files: make(map[string]bool)}
	for _, f := range opts.Files {
		l.files[absPath(f)] = true
	}
	for _, d := range opts.Exclude {
		if d != "" {
			l.exclude = append(l.exclude, absPath(d))
		}
	}
	return l
}

// Run performs an initial build, then watches until ctx is done. A failed
// build is logged and does not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	watcher, err := l.setupFileWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	return l.run(ctx, watcher)
}

// run drives the loop over an existing watcher. The rebuild worker is
// stopped and waited for on every return path.
func (l *Loop) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	rebuildReq, trigger := setupRebuildDebouncer(l.opts.Debounce)

	if l.opts.Interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		defer func() { _ = sched.Stop(context.Background()) }()
		if _, err := sched.ScheduleEvery("periodic-rebuild", l.opts.Interval, trigger); err != nil {
			return err
		}
		sched.Start()
		slog.Info("Periodic rebuild scheduled", slog.String("interval", l.opts.Interval.String()))
	}

	workerCtx, cancel := context.WithCancel(ctx)
	done := l.startRebuildWorker(workerCtx, rebuildReq)
	defer func() {
		cancel()
		<-done
	}()

	requestRebuild(rebuildReq)
	slog.Info("Watching for changes", logfields.Count(len(l.opts.Dirs)+len(l.opts.Files)))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch loop")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			l.handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// setupFileWatcher creates the fsnotify watcher over every target.
func (l *Loop) setupFileWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, dir := range l.opts.Dirs {
		if err := addDirsRecursive(watcher, dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	for f := range l.files {
		if err := watcher.Add(filepath.Dir(f)); err != nil {
			slog.Warn("watch add failed", logfields.Path(f), logfields.Error(err))
		}
	}
	return watcher, nil
}

// setupRebuildDebouncer returns the rebuild channel and a trigger that
// signals it once events have been quiet for window.
func setupRebuildDebouncer(window time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(window, func() { requestRebuild(rebuildReq) })
	}
	return rebuildReq, trigger
}

func requestRebuild(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// startRebuildWorker processes rebuild requests one at a time. A request
// arriving while a build runs is coalesced into a single follow-up.
func (l *Loop) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				l.processRebuild(ctx)
			}
		}
	}()
	return done
}

func (l *Loop) processRebuild(ctx context.Context) {
	slog.Info("Change detected; rebuilding style guide")
	result, err := l.svc.Run(ctx, l.req)
	switch {
	case err != nil:
		slog.Warn("rebuild failed", logfields.Error(err))
	case result == nil || !result.Status.IsTerminal():
		slog.Warn("rebuild ended without a final status")
	default:
		slog.Info("Rebuild finished",
			slog.String("status", string(result.Status)),
			logfields.Count(len(result.Pages)))
	}
	if l.OnBuild != nil {
		l.OnBuild(result, err)
	}
}

// handleFileEvent filters an event and triggers a rebuild if relevant.
func (l *Loop) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if !l.relevant(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (l *Loop) relevant(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	abs := absPath(path)
	for _, ex := range l.exclude {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return false
		}
	}
	if l.files[abs] {
		return true
	}
	for _, dir := range l.opts.Dirs {
		d := absPath(dir)
		if abs == d || strings.HasPrefix(abs, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports hidden files and editor temp files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

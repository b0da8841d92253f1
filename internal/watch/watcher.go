// Package watch rebuilds a book whenever its sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is the book root; SrcDir, SiteDir and CacheDir are its absolute directories.
	Root     string
	SrcDir   string
	SiteDir  string
	CacheDir string

	Debounce time.Duration

	// RebuildEvery schedules forced rebuilds. Zero disables them.
	RebuildEvery time.Duration

	// ServeAddr serves the site directory over HTTP when set.
	ServeAddr string

	// MetricsAddr serves MetricsHandler when both are set.
	MetricsAddr    string
	MetricsHandler http.Handler

	// OnBuild is called after every build.
	OnBuild func(*build.BuildResult, error)
}

// Watcher runs an initial build, then one build per settled burst of changes.
type Watcher struct {
	service build.BuildService
	opts    Options
	logger  *slog.Logger
	queue   *rebuildQueue
}

// New creates a watcher building through service.
func New(service build.BuildService, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{service: service, opts: opts, logger: slog.Default(), queue: newRebuildQueue()}
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Run blocks until ctx is done. A build in progress when ctx ends runs to completion.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	if err := addDirsRecursive(fsw, w.opts.SrcDir, w.logger); err != nil {
		return err
	}
	if err := fsw.Add(w.opts.Root); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Root, err)
	}

	var servers []*http.Server
	if w.opts.ServeAddr != "" {
		servers = append(servers, w.serve(w.opts.ServeAddr, SiteHandler(w.opts.SiteDir)))
	}
	if w.opts.MetricsAddr != "" && w.opts.MetricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", w.opts.MetricsHandler)
		servers = append(servers, w.serve(w.opts.MetricsAddr, mux))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				w.logger.Warn("HTTP server shutdown error", logfields.Error(err))
			}
		}
	}()

	if w.opts.RebuildEvery > 0 {
		scheduler, err := w.schedule(w.opts.RebuildEvery)
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.work(ctx)
	}()
	defer wg.Wait()
	defer cancel()

	w.queue.push(request{trigger: "watch"})
	return w.loop(ctx, fsw, w.debouncer())
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watch")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if within(ev.Name, w.opts.SiteDir) || within(ev.Name, w.opts.CacheDir) {
		return
	}
	if !within(ev.Name, w.opts.SrcDir) {
		if !isRootConfigFile(ev.Name) {
			return
		}
	} else if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		_ = addDirsRecursive(fsw, ev.Name, w.logger)
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// debouncer returns a trigger that queues a build once no change arrived for the
// debounce interval.
func (w *Watcher) debouncer() func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.opts.Debounce, func() {
			w.queue.push(request{trigger: "watch"})
		})
	}
}

// work runs queued builds one at a time until ctx is done.
func (w *Watcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue.signal:
			r, ok := w.queue.pop()
			if !ok {
				continue
			}
			w.logger.Info("Rebuilding", slog.String("trigger", r.trigger), slog.Bool("force", r.force))
			res, err := w.service.Run(context.WithoutCancel(ctx), build.BuildRequest{
				Root:    w.opts.Root,
				Force:   r.force,
				Trigger: r.trigger,
			})
			if w.opts.OnBuild != nil {
				w.opts.OnBuild(res, err)
			}
		}
	}
}

func (w *Watcher) schedule(every time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { w.queue.push(request{force: true, trigger: "schedule"}) }),
		gocron.WithName("forced-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic build job: %w", err)
	}
	w.logger.Info("Scheduled forced rebuilds", slog.Duration("every", every))
	s.Start()
	return s, nil
}

func (w *Watcher) serve(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		w.logger.Info("Serving", logfields.Addr(addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("HTTP server failed", logfields.Addr(addr), logfields.Error(err))
		}
	}()
	return srv
}

// SiteHandler serves the site directory. Requests are never cached by the browser so
// a reload always shows the latest build.
func SiteHandler(siteDir string) http.Handler {
	files := http.FileServer(http.Dir(siteDir))
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(rw, r)
	})
}

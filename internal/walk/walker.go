package walk

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
)

// ErrUntracked means a document of the tree is missing from the snapshot taken for
// this build, usually because it was created while the build was starting.
var ErrUntracked = errors.New("document is not part of the current cache snapshot")

// Walker renders the documents of a project.
type Walker struct {
	renderer    Renderer
	tracker     Tracker
	artifacts   ArtifactReader
	concurrency int
	progress    Progress
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithConcurrency bounds the number of documents rendered at once. Values below 1 mean
// runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithProgress reports render completions to p.
func WithProgress(p Progress) Option {
	return func(w *Walker) {
		if p != nil {
			w.progress = p
		}
	}
}

// WithRecorder records render metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Walker) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWalker creates a walker. tracker tells which documents the current snapshot knows;
// artifacts provides the cached output of skipped documents.
func NewWalker(renderer Renderer, tracker Tracker, artifacts ArtifactReader, opts ...Option) *Walker {
	w := &Walker{
		renderer:    renderer,
		tracker:     tracker,
		artifacts:   artifacts,
		concurrency: runtime.NumCPU(),
		progress:    NopProgress{},
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk renders every stale document of project and reads the others from the cache.
// Per-document failures are collected in the result; Walk itself does not fail.
func (w *Walker) Walk(ctx context.Context, project *book.Project) *Result {
	start := time.Now()
	res := &Result{}

	var reuse, render []string
	for _, path := range Flatten(project) {
		rel, err := project.Rel(path)
		if err != nil || !w.tracker.Tracked(rel) {
			res.fail(path, ErrUntracked)
			w.recorder.IncDocumentResult(metrics.DocumentFailed)
			continue
		}
		if w.renderer.CanSkip(path) {
			reuse = append(reuse, path)
		} else {
			render = append(render, path)
		}
	}
	w.logger.Debug("Partitioned documents",
		logfields.Count(len(reuse)+len(render)),
		slog.Int("render", len(render)),
		slog.Int("reuse", len(reuse)))

	if len(render) > 0 {
		w.renderAll(ctx, render, res)
	}
	w.readCached(project, reuse, res)

	res.Elapsed = time.Since(start)
	return res
}

type completion struct {
	path string
	text string
	err  error
	done int
}

func (w *Walker) renderAll(ctx context.Context, paths []string, res *Result) {
	concurrency := min(w.concurrency, len(paths))
	w.recorder.SetRenderConcurrency(concurrency)

	// Every unit owns a fork taken before the pool starts.
	type unit struct {
		path     string
		renderer Renderer
	}
	units := make([]unit, len(paths))
	for i, path := range paths {
		units[i] = unit{path: path, renderer: w.renderer.Fork()}
	}

	total := len(paths)
	w.progress.Start(total)

	events := make(chan completion, concurrency)
	reported := make(chan []completion, 1)
	go func() {
		var all []completion
		for ev := range events {
			w.progress.Advance(ev.done, total, ev.path)
			all = append(all, ev)
		}
		w.progress.Finish()
		reported <- all
	}()

	var completed atomic.Int64
	tasks := make(chan unit)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for u := range tasks {
			started := time.Now()
			text, err := u.renderer.Render(ctx, u.path)
			w.recorder.ObserveRenderDuration(time.Since(started), err == nil)
			events <- completion{path: u.path, text: text, err: err, done: int(completed.Add(1))}
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for _, u := range units {
		tasks <- u
	}
	close(tasks)
	wg.Wait()
	close(events)

	for _, ev := range <-reported {
		if ev.err != nil {
			w.logger.Debug("Render failed", logfields.Path(ev.path), logfields.Error(ev.err))
			res.fail(ev.path, ev.err)
			w.recorder.IncDocumentResult(metrics.DocumentFailed)
			continue
		}
		res.Outputs = append(res.Outputs, Output{Text: ev.text, Path: ev.path})
		res.Rendered++
		w.recorder.IncDocumentResult(metrics.DocumentRendered)
	}
}

// readCached loads skipped documents from the artifact mirror. A missing artifact is an
// error for that document; it is never silently rendered again.
func (w *Walker) readCached(project *book.Project, paths []string, res *Result) {
	for _, path := range paths {
		rel, err := project.Rel(path)
		if err == nil {
			var text string
			text, err = w.artifacts.ReadArtifact(rel)
			if err == nil {
				res.Outputs = append(res.Outputs, Output{Text: text, Path: path, Reused: true})
				res.Reused++
				w.recorder.IncDocumentResult(metrics.DocumentReused)
				continue
			}
		}
		if !derrors.IsClassified(err) {
			err = derrors.CacheError("cannot read cached output").WithCause(err).WithContext("path", path).Build()
		}
		res.fail(path, err)
		w.recorder.IncDocumentResult(metrics.DocumentFailed)
	}
}

package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/cache"
	"git.home.luguber.info/inful/bookbuilder/internal/eventstore"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/render"
	"git.home.luguber.info/inful/bookbuilder/internal/site"
	"git.home.luguber.info/inful/bookbuilder/internal/walk"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	recorder      metrics.Recorder
	history       eventstore.Store
	logger        *slog.Logger
	renderOptions []render.Option
	newID         func() string
}

// NewBuildService creates a service without metrics or history.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
}

// WithRecorder records build, stage and render metrics.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory appends build events to store. History failures are logged, never fatal.
func (s *DefaultBuildService) WithHistory(store eventstore.Store) *DefaultBuildService {
	s.history = store
	return s
}

// WithLogger sets the logger.
func (s *DefaultBuildService) WithLogger(logger *slog.Logger) *DefaultBuildService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithRenderOptions passes options (converters, theme) to every renderer the service creates.
func (s *DefaultBuildService) WithRenderOptions(opts ...render.Option) *DefaultBuildService {
	s.renderOptions = append(s.renderOptions, opts...)
	return s
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	result := &BuildResult{BuildID: s.newID(), StartTime: time.Now()}
	logger := s.logger.With(logfields.BuildID(result.BuildID))

	trigger := req.Trigger
	if trigger == "" {
		trigger = "cli"
	}
	s.recordEvent(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(result.BuildID, eventstore.BuildStartedMeta{Root: req.Root, Force: req.Force, Trigger: trigger})
	})

	// Stage 1: load the book
	stageStart := time.Now()
	project, loadErrs, err := book.Open(req.Root, logger)
	result.LoadErrors = loadErrs
	s.endStage(logger, StageLoad, stageStart, err)
	if err != nil {
		return s.fail(ctx, logger, result, StageLoad, fmt.Errorf("%w: %w", ErrLoad, err))
	}
	result.Project = project

	// Stage 2: snapshot the source tree
	stageStart = time.Now()
	store := cache.NewStore(project.CacheDir(), project.Config.OutputExt).WithLogger(logger)
	previous := store.LoadPrevious(req.Force)
	current, err := cache.Capture(project.SrcDir())
	s.endStage(logger, StageSnapshot, stageStart, err)
	if err != nil {
		return s.fail(ctx, logger, result, StageSnapshot, fmt.Errorf("%w: %w", ErrSnapshot, err))
	}

	// Stage 3: render
	stageStart = time.Now()
	diff := cache.NewDiff(previous, current)
	opts := append([]render.Option{render.WithLogger(logger)}, s.renderOptions...)
	renderer, navErrs := render.NewBookRenderer(project, diff, opts...)
	result.Navigation = navErrs
	progress := req.Progress
	if progress == nil {
		progress = walk.LogProgress{Logger: logger}
	}
	walker := walk.NewWalker(renderer, diff, store,
		walk.WithConcurrency(project.Config.Concurrency),
		walk.WithProgress(progress),
		walk.WithRecorder(s.recorder),
		walk.WithLogger(logger))
	result.Walk = walker.Walk(ctx, project)
	s.endStage(logger, StageRender, stageStart, nil)
	logger.Info("Rendered documents",
		logfields.Rendered(result.Walk.Rendered),
		logfields.Reused(result.Walk.Reused),
		logfields.Failed(result.Walk.Failed()),
		logfields.DurationMS(ms(result.Walk.Elapsed)))

	// Stage 4: assemble the site and persist the cache
	stageStart = time.Now()
	report, err := site.NewAssembler(store, site.WithLogger(logger)).Assemble(result.Walk, project, current)
	result.Site = report
	s.endStage(logger, StageAssemble, stageStart, err)
	if err != nil {
		return s.fail(ctx, logger, result, StageAssemble, fmt.Errorf("%w: %w", ErrAssemble, err))
	}

	result.Status = BuildStatusSuccess
	if len(result.Diagnostics()) > 0 {
		result.Status = BuildStatusWarning
	}
	s.finish(result)
	s.recorder.IncBuildOutcome(outcomeFor(result.Status))
	s.recordEvent(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewBuildCompleted(result.BuildID, eventstore.BuildCounts{
			Rendered:   result.Walk.Rendered,
			Reused:     result.Walk.Reused,
			Failed:     result.Walk.Failed(),
			DurationMS: result.Duration.Milliseconds(),
		})
	})
	logger.Info("Build finished", slog.String("status", string(result.Status)), logfields.DurationMS(ms(result.Duration)))
	return result, nil
}

func (s *DefaultBuildService) endStage(logger *slog.Logger, stage string, start time.Time, err error) {
	d := time.Since(start)
	s.recorder.ObserveStageDuration(stage, d)
	if err != nil {
		s.recorder.IncStageResult(stage, metrics.ResultFatal)
		return
	}
	s.recorder.IncStageResult(stage, metrics.ResultSuccess)
	logger.Debug("Stage complete", logfields.Stage(stage), logfields.DurationMS(ms(d)))
}

func (s *DefaultBuildService) fail(ctx context.Context, logger *slog.Logger, result *BuildResult, stage string, err error) (*BuildResult, error) {
	result.Status = BuildStatusFailed
	result.FailedStage = stage
	s.finish(result)
	s.recorder.IncBuildOutcome(metrics.BuildFailed)
	s.recordEvent(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewBuildFailed(result.BuildID, stage, err.Error())
	})
	logger.Error("Build failed", logfields.Stage(stage), logfields.Error(err))
	return result, err
}

func (s *DefaultBuildService) finish(result *BuildResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)
}

func (s *DefaultBuildService) recordEvent(ctx context.Context, logger *slog.Logger, newEvent func() (eventstore.Event, error)) {
	if s.history == nil {
		return
	}
	e, err := newEvent()
	if err == nil {
		err = s.history.Append(ctx, e)
	}
	if err != nil {
		logger.Warn("Cannot record build history", logfields.Error(err))
	}
}

func outcomeFor(status BuildStatus) metrics.BuildOutcome {
	switch status {
	case BuildStatusSuccess:
		return metrics.BuildSuccess
	case BuildStatusWarning:
		return metrics.BuildWarning
	default:
		return metrics.BuildFailed
	}
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

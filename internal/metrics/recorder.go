package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// BuildOutcome is the final status of a build.
type BuildOutcome string

const (
	BuildSuccess BuildOutcome = "success"
	BuildWarning BuildOutcome = "warning" // completed with per-file errors
	BuildFailed  BuildOutcome = "failed"
)

// DocumentResult is what happened to one source document.
type DocumentResult string

const (
	DocumentRendered DocumentResult = "rendered"
	DocumentReused   DocumentResult = "reused"
	DocumentFailed   DocumentResult = "failed"
)

// Recorder defines observability hooks for build, stage and render metrics.
// Implementations must be safe for concurrent use: render observations arrive
// from every worker.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcome)
	ObserveRenderDuration(d time.Duration, success bool)
	IncDocumentResult(result DocumentResult)
	SetRenderConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) ObserveRenderDuration(time.Duration, bool)  {}
func (NoopRecorder) IncDocumentResult(DocumentResult)           {}
func (NoopRecorder) SetRenderConcurrency(int)                   {}

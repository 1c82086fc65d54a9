package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
	ResultSkipped ResultLabel = "skipped"
)

// FileKind labels files produced by the generator.
type FileKind string

const (
	FileRendered FileKind = "rendered"
	FileCopied   FileKind = "copied"
	FileAsset    FileKind = "asset"
)

// Recorder defines observability hooks for generation runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|invalid|failed
	AddFiles(kind FileKind, n int)
	SetValidationIssues(errors, warnings int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) AddFiles(FileKind, int)                     {}
func (NoopRecorder) SetValidationIssues(int, int)               {}

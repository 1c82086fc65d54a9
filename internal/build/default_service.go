package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/labdocs/internal/config"
	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/generator"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/metrics"
	"git.home.luguber.info/inful/labdocs/internal/observability"
	"git.home.luguber.info/inful/labdocs/internal/validation"
)

// Stage names used for logging and metrics.
const (
	StageLoad         = "load"
	StageValidate     = "validate"
	StageLint         = "lint"
	StageGenerateDocs = "generate_docs"
	StageSiteConfig   = "site_config"
	StageStaticAssets = "static_assets"
)

// Build outcomes recorded by the metrics recorder.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	recorder   metrics.Recorder
	linter     *validation.Linter
	now        func() time.Time
	version    string
	newBuildID func() string
}

// NewBuildService creates a new DefaultBuildService.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder: metrics.NoopRecorder{},
		linter:   validation.NewLinter(),
		now:      time.Now,
	}
}

// WithRecorder injects a metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithClock replaces the time source used for metadata and templates (for testing).
func (s *DefaultBuildService) WithClock(now func() time.Time) *DefaultBuildService {
	s.now = now
	return s
}

// WithVersion overrides the generator version stamped into metadata.
func (s *DefaultBuildService) WithVersion(v string) *DefaultBuildService {
	s.version = v
	return s
}

// WithBuildIDFactory replaces the build ID generator (for testing).
func (s *DefaultBuildService) WithBuildIDFactory(f func() string) *DefaultBuildService {
	s.newBuildID = f
	return s
}

// run tracks one pipeline execution.
type run struct {
	svc    *DefaultBuildService
	ctx    context.Context
	result *BuildResult
}

func (r *run) finish(status BuildStatus, outcome string) *BuildResult {
	r.result.Status = status
	r.result.EndTime = r.svc.now()
	r.result.Duration = r.result.EndTime.Sub(r.result.StartTime)
	r.svc.recorder.IncBuildOutcome(outcome)
	r.svc.recorder.ObserveBuildDuration(r.result.Duration)
	return r.result
}

// fail finishes the run for err, which fails stage.
func (r *run) fail(stage string, err error) (*BuildResult, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.svc.recorder.IncStageResult(stage, metrics.ResultSkipped)
		observability.WarnContext(r.ctx, "Build cancelled")
		return r.finish(BuildStatusCancelled, OutcomeCanceled), err
	}
	r.svc.recorder.IncStageResult(stage, metrics.ResultFatal)
	observability.ErrorContext(r.ctx, "Stage failed", logfields.Error(err))
	return r.finish(BuildStatusFailed, OutcomeFailed), err
}

func (r *run) stage(name string, fn func(ctx context.Context) error) error {
	start := r.svc.now()
	ctx := observability.WithStage(r.ctx, name)
	err := fn(ctx)
	r.svc.recorder.ObserveStageDuration(name, r.svc.now().Sub(start))
	if err == nil {
		r.svc.recorder.IncStageResult(name, metrics.ResultSuccess)
		observability.DebugContext(ctx, "Stage complete", logfields.Duration(r.svc.now().Sub(start)))
	}
	return err
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	env := req.Environment
	if env == "" {
		env = config.DefaultEnvironment
	}
	r := &run{
		svc: s,
		ctx: observability.WithEnvironment(ctx, env),
		result: &BuildResult{
			StartTime:   s.now(),
			Environment: env,
			ConfigDir:   req.ConfigDir,
		},
	}

	// Stage 1: load
	var loaded *config.Loaded
	err := r.stage(StageLoad, func(context.Context) error {
		var err error
		loaded, err = config.Load(config.LoadOptions{
			Dir:         req.ConfigDir,
			Environment: env,
			Version:     s.version,
			Now:         s.now,
			NewBuildID:  s.newBuildID,
		})
		if err != nil && !foundation.IsClassified(err) {
			err = foundation.WrapError(err, foundation.CategoryConfig, "failed to load configuration").Build()
		}
		return err
	})
	if err != nil {
		return r.fail(StageLoad, err)
	}
	r.result.Sources = loaded.Sources
	r.result.Metadata = loaded.Metadata
	r.ctx = observability.WithBuildID(r.ctx, loaded.Metadata.BuildID)
	observability.InfoContext(r.ctx, "Configuration loaded", logfields.Path(req.ConfigDir))

	// Stage 2: validate
	_ = r.stage(StageValidate, func(context.Context) error {
		r.result.Errors = validation.Validate(loaded.Root)
		return nil
	})
	if len(r.result.Errors) > 0 {
		s.recorder.SetValidationIssues(len(r.result.Errors), 0)
		for _, msg := range r.result.Errors {
			observability.DebugContext(r.ctx, "Validation error", slog.String("message", msg))
		}
		return r.finish(BuildStatusInvalid, OutcomeInvalid),
			foundation.ValidationError("configuration validation failed").
				WithContext("errors", r.result.Errors).
				Build()
	}

	// Stage 3: lint (warnings only)
	_ = r.stage(StageLint, func(ctx context.Context) error {
		r.result.Warnings = s.linter.Lint(loaded.Root)
		for _, w := range r.result.Warnings {
			observability.WarnContext(ctx, w)
		}
		return nil
	})
	s.recorder.SetValidationIssues(0, len(r.result.Warnings))
	r.result.Summary = validation.Summarize(loaded.Root)

	if req.Options.ValidateOnly {
		return r.finish(BuildStatusValidated, OutcomeSuccess), nil
	}

	gen := generator.New(loaded.Root, generator.Options{
		ProjectRoot:  req.ProjectRoot,
		TemplatesDir: req.TemplatesDir,
		OutputDir:    req.OutputDir,
		Expose:       req.Options.Expose,
		Now:          s.now,
	}).SetRecorder(s.recorder)
	r.result.OutputPath = gen.OutputDir()
	r.result.SiteConfig = gen.SiteConfigPath()
	r.result.Collisions = gen.Collisions()

	// Stage 4: docs tree
	if err := r.stage(StageGenerateDocs, gen.GenerateDocs); err != nil {
		r.result.Generated = gen.Result()
		return r.fail(StageGenerateDocs, err)
	}

	// Stage 5: site configuration
	err = r.stage(StageSiteConfig, func(ctx context.Context) error {
		_, err := gen.GenerateSiteConfig(ctx)
		return err
	})
	if err != nil {
		r.result.Generated = gen.Result()
		return r.fail(StageSiteConfig, err)
	}

	// Stage 6: static assets
	if err := r.stage(StageStaticAssets, gen.CopyStaticAssets); err != nil {
		r.result.Generated = gen.Result()
		return r.fail(StageStaticAssets, err)
	}

	r.result.Generated = gen.Result()
	observability.InfoContext(r.ctx, "Documentation generation completed",
		logfields.Output(r.result.OutputPath),
		logfields.Count(len(r.result.Generated.Rendered)+len(r.result.Generated.Copied)))
	return r.finish(BuildStatusSuccess, OutcomeSuccess), nil
}

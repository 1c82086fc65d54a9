package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/labdocs/internal/config"
	"git.home.luguber.info/inful/labdocs/internal/generator"
	"git.home.luguber.info/inful/labdocs/internal/validation"
)

// BuildService is the canonical interface for executing documentation builds.
type BuildService interface {
	// Run loads, validates and renders one configuration directory.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a documentation build.
type BuildRequest struct {
	// ConfigDir is the resolved configuration directory.
	ConfigDir string

	// Environment selects environments/<name>.yml; empty means production.
	Environment string

	// ProjectRoot holds templates/, receives docs/ and mkdocs.yml.
	ProjectRoot string

	// TemplatesDir and OutputDir override the conventional layout below ProjectRoot.
	TemplatesDir string
	OutputDir    string

	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// ValidateOnly stops after validation and fills in the summary.
	ValidateOnly bool

	// Expose restricts the configuration sections available at the template
	// root; nil exposes all of them.
	Expose []string
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	Status BuildStatus

	Environment string
	ConfigDir   string
	OutputPath  string
	SiteConfig  string

	// Sources lists every configuration file consulted.
	Sources  []config.Source
	Metadata config.Metadata

	// Errors holds validation errors in report order.
	Errors   []string
	Warnings []string
	Summary  validation.Summary

	// Generated describes what was written; empty for validate-only runs.
	Generated generator.Result
	// Collisions lists configuration sections hidden from the template root.
	Collisions []string

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusValidated BuildStatus = "validated"
	BuildStatusInvalid   BuildStatus = "invalid"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusValidated
}

// Package config loads the homelab configuration directory into a single
// merged value tree.
//
// Four base files are read in a fixed order and combined with a shallow merge
// (a later file replaces whole top-level sections of an earlier one). An
// optional environment file is then deep-merged on top. The shallow/deep
// asymmetry is long-standing behaviour that existing configuration
// directories rely on.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/value"
	"git.home.luguber.info/inful/labdocs/internal/version"
)

// BaseFiles are read in this order; later files win on top-level key conflicts.
var BaseFiles = []string{
	"network.yml",
	"services.yml",
	"infrastructure.yml",
	"documentation.yml",
}

const (
	// EnvironmentsDir holds per-environment override files named <env>.yml.
	EnvironmentsDir    = "environments"
	DefaultEnvironment = "production"
)

// SourceStatus describes what happened to one configuration file.
type SourceStatus string

const (
	SourceLoaded  SourceStatus = "loaded"
	SourceMissing SourceStatus = "missing"
	SourceEmpty   SourceStatus = "empty"
)

// Source records one configuration file consulted during Load.
type Source struct {
	Name   string
	Path   string
	Status SourceStatus
}

// LoadOptions controls Load. Environment must already be resolved by the caller.
type LoadOptions struct {
	Dir         string
	Environment string
	// Version is stamped into the metadata; defaults to version.Version.
	Version string
	// Now defaults to time.Now.
	Now func() time.Time
	// NewBuildID defaults to a random UUID.
	NewBuildID func() string
}

// Loaded is the result of a successful Load.
type Loaded struct {
	Root     value.Value
	Metadata Metadata
	Sources  []Source
}

// Load reads the configuration directory described by opts. Missing or empty
// files are skipped; unreadable or malformed files abort the load.
func Load(opts LoadOptions) (*Loaded, error) {
	if opts.Environment == "" {
		opts.Environment = DefaultEnvironment
	}
	if opts.Version == "" {
		opts.Version = version.Version
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewBuildID == nil {
		opts.NewBuildID = uuid.NewString
	}

	slog.Debug("Loading configuration", logfields.Path(opts.Dir))

	loaded := &Loaded{Root: value.Mapping()}
	for _, name := range BaseFiles {
		path := filepath.Join(opts.Dir, name)
		section, src, err := readSource(name, path)
		if err != nil {
			return nil, err
		}
		loaded.Sources = append(loaded.Sources, src)
		switch src.Status {
		case SourceMissing:
			slog.Warn("Configuration file missing", logfields.File(name))
			continue
		case SourceEmpty:
			slog.Warn("Configuration file empty", logfields.File(name))
			continue
		}
		loaded.Root = value.MergeShallow(loaded.Root, section)
		slog.Debug("Loaded configuration file", logfields.File(name))
	}

	envName := opts.Environment + ".yml"
	envPath := filepath.Join(opts.Dir, EnvironmentsDir, envName)
	override, src, err := readSource(filepath.Join(EnvironmentsDir, envName), envPath)
	if err != nil {
		return nil, err
	}
	loaded.Sources = append(loaded.Sources, src)
	if src.Status == SourceLoaded {
		loaded.Root = value.DeepMerge(loaded.Root, override)
		slog.Debug("Loaded environment overrides", logfields.Environment(opts.Environment))
	} else {
		slog.Info("No environment overrides", logfields.Environment(opts.Environment))
	}

	loaded.Metadata = Metadata{
		GeneratedAt:      opts.Now(),
		Environment:      opts.Environment,
		ConfigPath:       opts.Dir,
		GeneratorVersion: opts.Version,
		BuildID:          opts.NewBuildID(),
		ConfigRevision:   configRevision(opts.Dir),
	}
	loaded.Root.Set(MetadataKey, loaded.Metadata.Value())
	return loaded, nil
}

// readSource reads and decodes one file. A file that decodes to anything other
// than a mapping (or nothing) is a configuration error.
func readSource(name, path string) (value.Value, Source, error) {
	src := Source{Name: name, Path: path}
	// #nosec G304 -- path is built from the configured directory and fixed names.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			src.Status = SourceMissing
			return value.Null(), src, nil
		}
		return value.Null(), src, foundation.WrapError(err, foundation.CategoryConfig, "read "+name).
			Fatal().
			WithContext("file", path).
			Build()
	}

	doc, err := value.Decode(data)
	if err != nil {
		return value.Null(), src, foundation.WrapError(err, foundation.CategoryConfig, "YAML error in "+name).
			Fatal().
			WithContext("file", path).
			Build()
	}
	if !doc.Truthy() {
		src.Status = SourceEmpty
		return value.Null(), src, nil
	}
	if !doc.IsMapping() {
		return value.Null(), src, foundation.ConfigError(name+" must contain a mapping at the top level").
			WithContext("file", path).
			WithContext("kind", doc.Kind().String()).
			Build()
	}
	src.Status = SourceLoaded
	return doc, src, nil
}

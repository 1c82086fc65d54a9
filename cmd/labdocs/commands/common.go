package commands

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/labdocs/internal/build"
	"git.home.luguber.info/inful/labdocs/internal/config"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/metrics"
)

// DotEnvFiles are loaded from the working directory before flags are
// resolved. Variables already set in the process environment win.
var DotEnvFiles = []string{".env", ".env.local"}

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives the human-readable status lines.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Path to configuration directory (default: $HOMELAB_CONFIG_PATH, then config-local/, then config-example/)"`
	Env     string           `short:"e" help:"Environment name, e.g. production, test, development (default: $HOMELAB_ENV or production)"`
	Root    string           `help:"Project root holding templates/ and receiving docs/ and mkdocs.yml" default:"." type:"path"`
	Expose  []string         `help:"Only expose these configuration sections as top-level template variables (all are reachable via .config)"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Validate the configuration and generate documentation (default)"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate documentation whenever configuration or templates change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	loadDotEnv(DotEnvFiles)
	return nil
}

// loadDotEnv loads the files that exist, never overriding set variables.
func loadDotEnv(files []string) {
	for _, name := range files {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", logfields.File(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded env file", logfields.File(name))
	}
}

// Request resolves the flags and environment into a build request.
func (c *CLI) Request(lookup config.LookupFunc) (build.BuildRequest, error) {
	root := c.Root
	if root == "" {
		root = "."
	}
	dir, err := config.ResolveConfigDir(c.Config, lookup, root)
	if err != nil {
		return build.BuildRequest{}, err
	}
	return build.BuildRequest{
		ConfigDir:   dir,
		Environment: config.ResolveEnvironment(c.Env, lookup),
		ProjectRoot: root,
		Options:     build.BuildOptions{Expose: c.Expose},
	}, nil
}

// writeMetrics exports recorder to path; failures are logged, never fatal.
func writeMetrics(rec *metrics.PrometheusRecorder, path string) {
	if rec == nil || path == "" {
		return
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			slog.Warn("Failed to create metrics directory", logfields.Path(dir), logfields.Error(err))
			return
		}
	}
	if err := rec.WriteTextfile(path); err != nil {
		slog.Warn("Failed to write metrics file", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Debug("Wrote metrics file", logfields.Path(path))
}

package generator

import (
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/labdocs/internal/metrics"
	"git.home.luguber.info/inful/labdocs/internal/pages"
	"git.home.luguber.info/inful/labdocs/internal/render"
	"git.home.luguber.info/inful/labdocs/internal/value"
)

const (
	// TemplatesDir is the template root below the project root.
	TemplatesDir = "templates"
	// OutputDir receives the generated documentation below the project root.
	OutputDir = "docs"
	// DocsTemplatesDir holds page templates below the template root.
	DocsTemplatesDir = "docs"
	// SiteConfigTemplate is rendered to SiteConfigFile when present.
	SiteConfigTemplate = "mkdocs.yml.j2"
	SiteConfigFile     = "mkdocs.yml"
	// PartialsDir holds templates shared by pages and the site configuration.
	PartialsDir = "partials"
)

// StaticDirs are copied verbatim from the template root into the output directory.
var StaticDirs = []string{"assets", "stylesheets", "images", "img"}

// Options configures a Generator. Empty directories default to the
// conventional layout below ProjectRoot.
type Options struct {
	ProjectRoot  string
	TemplatesDir string
	OutputDir    string
	// Expose limits the configuration sections available at the template
	// root. Nil exposes every non-reserved section.
	Expose []string
	Now    func() time.Time
}

// Generator renders one configuration into the output tree.
type Generator struct {
	root         value.Value
	projectRoot  string
	templatesDir string
	outputDir    string
	engine       *render.Engine
	context      render.Context
	recorder     metrics.Recorder
	result       Result
}

// Result describes what the generator wrote.
type Result struct {
	Rendered   []string
	Copied     []string
	Assets     []string
	Pages      []pages.Page
	SiteConfig SiteConfigSource
}

// New creates a Generator for root.
func New(root value.Value, opts Options) *Generator {
	projectRoot := opts.ProjectRoot
	if projectRoot == "" {
		projectRoot = "."
	}
	templatesDir := opts.TemplatesDir
	if templatesDir == "" {
		templatesDir = filepath.Join(projectRoot, TemplatesDir)
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(projectRoot, OutputDir)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx := render.NewContextBuilder(opts.Expose, now).Build(root)
	return &Generator{
		root:         root,
		projectRoot:  projectRoot,
		templatesDir: templatesDir,
		outputDir:    outputDir,
		engine:       render.NewEngine(now).WithPartials(filepath.Join(templatesDir, PartialsDir)),
		context:      ctx,
		recorder:     metrics.NoopRecorder{},
	}
}

// SetRecorder injects a metrics recorder (optional).
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	g.recorder = r
	return g
}

// OutputDir returns the directory documentation is written to.
func (g *Generator) OutputDir() string { return g.outputDir }

// SiteConfigPath returns where the site configuration is written.
func (g *Generator) SiteConfigPath() string {
	return filepath.Join(g.projectRoot, SiteConfigFile)
}

// Result returns what has been written so far.
func (g *Generator) Result() Result { return g.result }

// Collisions lists configuration sections hidden from the template root.
func (g *Generator) Collisions() []string { return g.context.Collisions() }

func (g *Generator) logger() *slog.Logger {
	return slog.Default().With("component", "generator")
}

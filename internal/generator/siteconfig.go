package generator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/value"
)

// SiteConfigSource tells where the written site configuration came from.
type SiteConfigSource string

const (
	SiteConfigTemplated SiteConfigSource = "template"
	SiteConfigDefault   SiteConfigSource = "default"
)

const (
	DefaultSiteName        = "Homelab Documentation"
	DefaultSiteDescription = "Homelab infrastructure documentation"
)

// GenerateSiteConfig writes mkdocs.yml to the project root, rendered from the
// site configuration template when there is one. A missing template or any
// failure to render or write it falls back to the default configuration; only
// a failure to write that default is returned.
func (g *Generator) GenerateSiteConfig(ctx context.Context) (SiteConfigSource, error) {
	log := g.logger()
	if err := ctx.Err(); err != nil {
		return "", foundation.WrapError(err, foundation.CategoryBuild, "site configuration canceled").Build()
	}

	tplPath := filepath.Join(g.templatesDir, SiteConfigTemplate)
	_, statErr := os.Stat(tplPath)
	switch {
	case errors.Is(statErr, fs.ErrNotExist):
		log.Warn("No site configuration template found, creating default", logfields.Path(tplPath))
	case statErr != nil:
		log.Error("Cannot access site configuration template", logfields.Path(tplPath), logfields.Error(statErr))
	default:
		err := g.renderSiteConfig(tplPath)
		if err == nil {
			log.Info("Generated site configuration", logfields.Output(g.SiteConfigPath()))
			g.result.SiteConfig = SiteConfigTemplated
			return SiteConfigTemplated, nil
		}
		log.Error("Error generating site configuration, falling back to default", logfields.Error(err))
	}

	if err := g.writeDefaultSiteConfig(); err != nil {
		return "", err
	}
	log.Info("Created default site configuration", logfields.Output(g.SiteConfigPath()))
	g.result.SiteConfig = SiteConfigDefault
	return SiteConfigDefault, nil
}

func (g *Generator) renderSiteConfig(tplPath string) error {
	content, err := g.engine.RenderFile(tplPath, SiteConfigTemplate, g.context.Data())
	if err != nil {
		return foundation.SiteConfigError("failed to render site configuration").
			WithCause(err).
			WithContext("file", SiteConfigTemplate).
			Build()
	}
	// #nosec G306 -- site configuration is not secret
	if err := os.WriteFile(g.SiteConfigPath(), []byte(content), 0o644); err != nil {
		return foundation.SiteConfigError("failed to write site configuration").
			WithCause(err).
			WithContext("path", g.SiteConfigPath()).
			Build()
	}
	return nil
}

func (g *Generator) writeDefaultSiteConfig() error {
	cfg := DefaultSiteConfig(g.siteString("site.name", DefaultSiteName), g.siteString("site.description", DefaultSiteDescription))
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return foundation.WrapError(err, foundation.CategoryBuild, "failed to encode default site configuration").Build()
	}
	content := append([]byte("# Generated MkDocs configuration\n"), out...)
	// #nosec G306 -- site configuration is not secret
	if err := os.WriteFile(g.SiteConfigPath(), content, 0o644); err != nil {
		return foundation.WrapError(err, foundation.CategoryBuild, "failed to write default site configuration").
			WithContext("path", g.SiteConfigPath()).
			Build()
	}
	return nil
}

// siteString reads a scalar setting; missing, null and structured values
// fall back.
func (g *Generator) siteString(path, fallback string) string {
	v, ok := g.root.Lookup(path)
	if !ok || v.Kind() != value.KindScalar {
		return fallback
	}
	return v.String()
}

// SiteConfig is the subset of the MkDocs configuration written by default.
type SiteConfig struct {
	SiteName           string    `yaml:"site_name"`
	SiteDescription    string    `yaml:"site_description"`
	Theme              SiteTheme `yaml:"theme"`
	MarkdownExtensions []any     `yaml:"markdown_extensions"`
	Plugins            []string  `yaml:"plugins"`
	DocsDir            string    `yaml:"docs_dir"`
	SiteDir            string    `yaml:"site_dir"`
}

type SiteTheme struct {
	Name     string         `yaml:"name"`
	Palette  []PaletteEntry `yaml:"palette"`
	Features []string       `yaml:"features"`
}

type PaletteEntry struct {
	Scheme  string        `yaml:"scheme"`
	Primary string        `yaml:"primary"`
	Accent  string        `yaml:"accent"`
	Toggle  PaletteToggle `yaml:"toggle"`
}

type PaletteToggle struct {
	Icon string `yaml:"icon"`
	Name string `yaml:"name"`
}

// DefaultSiteConfig returns the Material theme configuration used when the
// project has no site configuration template.
func DefaultSiteConfig(name, description string) SiteConfig {
	return SiteConfig{
		SiteName:        name,
		SiteDescription: description,
		Theme: SiteTheme{
			Name: "material",
			Palette: []PaletteEntry{
				{Scheme: "default", Primary: "indigo", Accent: "indigo",
					Toggle: PaletteToggle{Icon: "material/brightness-7", Name: "Switch to dark mode"}},
				{Scheme: "slate", Primary: "indigo", Accent: "indigo",
					Toggle: PaletteToggle{Icon: "material/brightness-4", Name: "Switch to light mode"}},
			},
			Features: []string{
				"navigation.instant",
				"navigation.tracking",
				"navigation.tabs",
				"navigation.sections",
				"navigation.top",
				"search.highlight",
				"search.share",
				"content.code.copy",
			},
		},
		MarkdownExtensions: []any{
			"admonition",
			"pymdownx.details",
			"pymdownx.superfences",
			map[string]any{"pymdownx.tabbed": map[string]any{"alternate_style": true}},
			map[string]any{"pymdownx.highlight": map[string]any{"anchor_linenums": true}},
			"pymdownx.inlinehilite",
			"pymdownx.snippets",
			"attr_list",
			"md_in_html",
			"tables",
			map[string]any{"toc": map[string]any{"permalink": true}},
		},
		Plugins: []string{"search"},
		DocsDir: OutputDir,
		SiteDir: "site",
	}
}

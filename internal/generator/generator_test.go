package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/testutil/testutils"
	"git.home.luguber.info/inful/labdocs/internal/value"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func sampleConfig() value.Value {
	return value.MappingOf(
		"domain", map[string]any{"internal": "lab.local"},
		"site", map[string]any{"name": "Lab Docs"},
		"networks", map[string]any{"mgmt": map[string]any{"vlan_id": 10, "subnet": "10.0.10.0/24", "gateway": "10.0.10.1"}},
		"services", map[string]any{"grafana": map[string]any{"enabled": true, "host": "mon01", "ip": "10.0.10.20"}},
	)
}

func newTestGenerator(t *testing.T, root string, cfg value.Value) *Generator {
	t.Helper()
	return New(cfg, Options{ProjectRoot: root, Now: func() time.Time { return fixedNow }})
}

func TestGenerateDocsRendersAndCopies(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/index.md.j2":         "# {{ .domain.internal }}\n\nGenerated {{ .ansible_date_time.iso8601 }}\n",
		"templates/docs/network/vlans.md.j2": "{{ range $name, $n := .networks }}- {{ $name }}: {{ $n.vlan_id }}\n{{ end }}",
		"templates/docs/about.md":            "# About\n",
		"templates/docs/network/diagram.svg": "<svg/>",
	})

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.GenerateDocs(context.Background()))

	out := filepath.Join(root, OutputDir)
	testutils.NewFileAssertions(t, out).
		AssertFileEquals("index.md", "# lab.local\n\nGenerated 2026-03-04T05:06:07Z\n").
		AssertFileEquals("network/vlans.md", "- mgmt: 10\n").
		AssertFileEquals("about.md", "# About\n").
		AssertFileExists("network/diagram.svg").
		AssertFileNotExists("index.md.j2")

	res := g.Result()
	assert.Equal(t, []string{"index.md", "network/vlans.md"}, res.Rendered)
	assert.Equal(t, []string{"about.md", "network/diagram.svg"}, res.Copied)
	require.Len(t, res.Pages, 3)
	assert.Equal(t, "About", res.Pages[0].Title)
	assert.Equal(t, "lab.local", res.Pages[1].Title)
}

func TestGenerateDocsIsIdempotentAndRemovesStaleFiles(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/index.md.j2": "Site {{ .site.name }}\n",
		"docs/stale.md":              "left over",
	})

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.GenerateDocs(context.Background()))
	first := testutils.ReadTree(t, filepath.Join(root, OutputDir))

	require.NoError(t, g.GenerateDocs(context.Background()))
	second := testutils.ReadTree(t, filepath.Join(root, OutputDir))

	assert.Equal(t, map[string]string{"index.md": "Site Lab Docs\n"}, first)
	assert.Equal(t, first, second)
}

func TestGenerateDocsWithoutTemplates(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{"docs/old.md": "x"})

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.GenerateDocs(context.Background()))

	assert.Empty(t, testutils.ReadTree(t, filepath.Join(root, OutputDir)))
	testutils.NewFileAssertions(t, root).AssertDirExists(OutputDir)
}

func TestGenerateDocsRenderErrorIsBuildError(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/broken.md.j2": "{{ .does_not_exist.field }}",
	})

	err := newTestGenerator(t, root, sampleConfig()).GenerateDocs(context.Background())
	require.Error(t, err)

	ce, ok := foundation.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, foundation.CategoryBuild, ce.Category())
	file, _ := ce.Context().GetString("file")
	assert.Equal(t, "docs/broken.md.j2", file)
}

func TestGenerateDocsOutputDirErrorIsFileSystemError(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{"blocker": "not a directory"})
	out := filepath.Join(root, "blocker", "docs")

	err := New(sampleConfig(), Options{ProjectRoot: root, OutputDir: out}).GenerateDocs(context.Background())
	require.Error(t, err)

	ce, ok := foundation.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, foundation.CategoryFileSystem, ce.Category())
	path, _ := ce.Context().GetString("path")
	assert.Equal(t, out, path)
}

func TestGenerateDocsPreservesCopiedFileMetadata(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{"templates/docs/run.sh": "#!/bin/sh\n"})
	src := filepath.Join(root, "templates/docs/run.sh")
	require.NoError(t, os.Chmod(src, 0o750))
	mtime := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, newTestGenerator(t, root, sampleConfig()).GenerateDocs(context.Background()))

	info, err := os.Stat(filepath.Join(root, OutputDir, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestGenerateDocsHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{"templates/docs/index.md.j2": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newTestGenerator(t, root, sampleConfig()).GenerateDocs(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateSiteConfigFromTemplate(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/mkdocs.yml.j2": "site_name: {{ .site.name }}\n",
	})

	g := newTestGenerator(t, root, sampleConfig())
	source, err := g.GenerateSiteConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SiteConfigTemplated, source)
	testutils.NewFileAssertions(t, root).AssertFileEquals(SiteConfigFile, "site_name: Lab Docs\n")
}

func TestGenerateSiteConfigDefault(t *testing.T) {
	root := t.TempDir()

	g := newTestGenerator(t, root, sampleConfig())
	source, err := g.GenerateSiteConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SiteConfigDefault, source)

	cfg := readSiteConfig(t, root)
	assert.Equal(t, "Lab Docs", cfg.SiteName)
	assert.Equal(t, DefaultSiteDescription, cfg.SiteDescription)
	assert.Equal(t, "material", cfg.Theme.Name)
	assert.Len(t, cfg.Theme.Palette, 2)
	assert.Equal(t, []string{"search"}, cfg.Plugins)
	assert.Equal(t, "docs", cfg.DocsDir)
	assert.Equal(t, "site", cfg.SiteDir)
}

func TestGenerateSiteConfigFallsBackOnRenderError(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/mkdocs.yml.j2": "site_name: {{ .missing.name }}\n",
	})

	g := newTestGenerator(t, root, value.MappingOf("domain", map[string]any{"internal": "x"}))
	source, err := g.GenerateSiteConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SiteConfigDefault, source)
	assert.Equal(t, DefaultSiteName, readSiteConfig(t, root).SiteName)
}

func TestDefaultSiteConfigQuotesSpecialCharacters(t *testing.T) {
	root := t.TempDir()
	cfg := value.MappingOf("site", map[string]any{"name": `My "lab": docs`})

	_, err := newTestGenerator(t, root, cfg).GenerateSiteConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `My "lab": docs`, readSiteConfig(t, root).SiteName)
}

func TestCopyStaticAssetsMerges(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/assets/existing.txt": "from docs",
		"templates/assets/logo.svg":          "<svg/>",
		"templates/stylesheets/extra.css":    "body{}",
		"templates/img/nested/photo.png":     "png",
	})

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.GenerateDocs(context.Background()))
	require.NoError(t, g.CopyStaticAssets(context.Background()))

	testutils.NewFileAssertions(t, filepath.Join(root, OutputDir)).
		AssertFileEquals("assets/existing.txt", "from docs").
		AssertFileEquals("assets/logo.svg", "<svg/>").
		AssertFileEquals("stylesheets/extra.css", "body{}").
		AssertFileEquals("img/nested/photo.png", "png").
		AssertFileNotExists("images")
	assert.Equal(t, []string{"assets/logo.svg", "stylesheets/extra.css", "img/nested/photo.png"}, g.Result().Assets)
}

func TestReservedSectionsAreReported(t *testing.T) {
	cfg := value.MappingOf("now", "shadow", "config", map[string]any{"x": 1})
	g := newTestGenerator(t, t.TempDir(), cfg)
	assert.ElementsMatch(t, []string{"now", "config"}, g.Collisions())
}

func TestSymlinkedFilesAreCopied(t *testing.T) {
	root := t.TempDir()
	shared := t.TempDir()
	testutils.WriteFiles(t, shared, map[string]string{
		"logo.svg":            "<svg/>",
		"diagrams/rack.svg":   "<rack/>",
		"snippets/note.md.j2": "note for {{ .domain.internal }}\n",
	})
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/index.md.j2": "x",
		"templates/assets/real.css":  "a",
	})
	links := map[string]string{
		"templates/docs/logo.svg":     "logo.svg",
		"templates/docs/diagrams":     "diagrams",
		"templates/docs/note.md.j2":   "snippets/note.md.j2",
		"templates/docs/dangling.svg": "absent.svg",
		"templates/assets/logo.svg":   "logo.svg",
		"templates/assets/diagrams":   "diagrams",
	}
	for link, target := range links {
		require.NoError(t, os.Symlink(filepath.Join(shared, target), filepath.Join(root, link)))
	}

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.GenerateDocs(context.Background()))
	require.NoError(t, g.CopyStaticAssets(context.Background()))

	assert.Equal(t, map[string]string{
		"index.md":                 "x",
		"logo.svg":                 "<svg/>",
		"note.md":                  "note for lab.local\n",
		"diagrams/rack.svg":        "<rack/>",
		"assets/real.css":          "a",
		"assets/logo.svg":          "<svg/>",
		"assets/diagrams/rack.svg": "<rack/>",
	}, testutils.ReadTree(t, filepath.Join(root, OutputDir)))
	assert.Equal(t, []string{"assets/diagrams/rack.svg", "assets/logo.svg", "assets/real.css"}, g.Result().Assets)
}

func TestCopyStaticAssetsStopsAtSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{"templates/assets/css/site.css": "a"})
	require.NoError(t, os.Symlink(filepath.Join(root, "templates/assets"), filepath.Join(root, "templates/assets/css/loop")))

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.CopyStaticAssets(context.Background()))
	assert.Equal(t, []string{"assets/css/site.css"}, g.Result().Assets)
}

func TestOptionalKeysRenderEmpty(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/services.md.j2": "{{ range $n, $s := .services }}{{ if $s.enabled }}- {{ $n }}{{ end }}[{{ $s.port }}]\n{{ end }}",
	})
	cfg := value.MappingOf("services", map[string]any{
		"grafana": map[string]any{"enabled": true, "host": "mon01"},
		"legacy":  map[string]any{"host": "h"},
	})

	require.NoError(t, newTestGenerator(t, root, cfg).GenerateDocs(context.Background()))
	testutils.NewFileAssertions(t, filepath.Join(root, OutputDir)).
		AssertFileEquals("services.md", "- grafana[]\n[]\n")
}

func TestPartialsAreSharedAcrossTemplates(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/partials/footer.md.j2": "Domain: {{ .domain.internal }}",
		"templates/docs/index.md.j2":      "# Home\n{{ template \"footer.md.j2\" . }}\n",
		"templates/mkdocs.yml.j2":         "site_name: \"{{ template \"footer.md.j2\" . }}\"\n",
	})

	g := newTestGenerator(t, root, sampleConfig())
	require.NoError(t, g.GenerateDocs(context.Background()))
	source, err := g.GenerateSiteConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SiteConfigTemplated, source)
	assert.Equal(t, "Domain: lab.local", readSiteConfig(t, root).SiteName)
	testutils.NewFileAssertions(t, root).
		AssertFileEquals("docs/index.md", "# Home\nDomain: lab.local\n").
		AssertFileNotExists("docs/footer.md").
		AssertFileNotExists("docs/partials")
}

func TestDefaultSiteConfigIgnoresStructuredName(t *testing.T) {
	root := t.TempDir()
	cfg := value.MappingOf("site", map[string]any{
		"name":        map[string]any{"en": "Lab"},
		"description": []any{"a", "b"},
	})

	_, err := newTestGenerator(t, root, cfg).GenerateSiteConfig(context.Background())
	require.NoError(t, err)
	site := readSiteConfig(t, root)
	assert.Equal(t, DefaultSiteName, site.SiteName)
	assert.Equal(t, DefaultSiteDescription, site.SiteDescription)
}

func TestDocsTimestampIsTakenPerTemplate(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"templates/docs/a.md.j2": "{{ .ansible_date_time.iso8601 }}",
		"templates/docs/b.md.j2": "{{ .ansible_date_time.iso8601 }}",
	})
	ts := fixedNow
	clock := func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}

	g := New(sampleConfig(), Options{ProjectRoot: root, Now: clock})
	require.NoError(t, g.GenerateDocs(context.Background()))

	tree := testutils.ReadTree(t, filepath.Join(root, OutputDir))
	assert.Equal(t, "2026-03-04T05:06:08Z", tree["a.md"])
	assert.Equal(t, "2026-03-04T05:06:09Z", tree["b.md"])
}

func readSiteConfig(t *testing.T, root string) SiteConfig {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, SiteConfigFile))
	require.NoError(t, err)
	var cfg SiteConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	return cfg
}

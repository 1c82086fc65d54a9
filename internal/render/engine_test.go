package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestTemplateNames(t *testing.T) {
	assert.True(t, IsTemplate("index.md.j2"))
	assert.False(t, IsTemplate("index.md"))
	assert.False(t, IsTemplate(".j2"))
	assert.Equal(t, "index.md", OutputName("index.md.j2"))
	assert.Equal(t, "mkdocs.yml", OutputName("mkdocs.yml.j2"))
}

func TestRenderFuncs(t *testing.T) {
	engine := NewEngine(func() time.Time { return fixedNow })
	data := map[string]any{
		"name":  "grafana dashboards",
		"path":  "a/b/c",
		"tags":  []any{"infra", "monitoring"},
		"site":  map[string]any{"name": "Lab"},
		"empty": "",
	}

	cases := []struct {
		tpl  string
		want string
	}{
		{`{{ .path | replace "/" "-" }}`, "a-b-c"},
		{`{{ .name | title }}`, "Grafana Dashboards"},
		{`{{ .name | upper }}`, "GRAFANA DASHBOARDS"},
		{`{{ "ABC" | lower }}`, "abc"},
		{`{{ .empty | default "n/a" }}`, "n/a"},
		{`{{ .name | default "n/a" }}`, "grafana dashboards"},
		{`{{ lookup . "site.name" "fallback" }}`, "Lab"},
		{`{{ lookup . "site.description" "fallback" }}`, "fallback"},
		{`{{ lookup . "name.nested" "x" }}`, "x"},
		{`{{ .tags | join ", " }}`, "infra, monitoring"},
		{`{{ .site | toYaml }}`, "name: Lab"},
		{`{{ "a\nb" | indent 2 }}`, "  a\n  b"},
		{`{{ (now).Year }}`, "2026"},
	}
	for _, tc := range cases {
		t.Run(tc.tpl, func(t *testing.T) {
			got, err := engine.Render("test", tc.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRenderMissingKeyIsEmpty(t *testing.T) {
	engine := NewEngine(nil)
	data := map[string]any{
		"services": map[string]any{
			"grafana": map[string]any{"enabled": true},
			"legacy":  map[string]any{"host": "h"},
		},
	}

	cases := []struct {
		tpl  string
		want string
	}{
		{`[{{ .nope }}]`, "[]"},
		{`{{ range $n, $s := .services }}{{ if $s.enabled }}{{ $n }} {{ end }}{{ end }}`, "grafana "},
		{`{{ range $n, $s := .services }}{{ with $s.enabled }}on{{ else }}{{ $n }}{{ end }} {{ end }}`, "on legacy "},
		{`{{ if or .nope .services.legacy.host }}yes{{ end }}`, "yes"},
		{`{{ if and .services .nope }}yes{{ else }}no{{ end }}`, "no"},
		{`{{ .nope | default "n/a" }}`, "n/a"},
		{`{{ $x := .nope }}[{{ $x }}]`, "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.tpl, func(t *testing.T) {
			got, err := engine.Render("index.md.j2", tc.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRenderFieldOfMissingKeyIsError(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.Render("index.md.j2", "{{ .nope.field }}", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.md.j2")
}

func TestRenderPartials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "services"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "services", "row.md.j2"),
		[]byte("| {{ .name }} | {{ .host }} |"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("{{ broken"), 0o644))

	engine := NewEngine(nil).WithPartials(dir)
	got, err := engine.Render("services.md.j2",
		`{{ range .rows }}{{ template "services/row.md.j2" . }}{{ "\n" }}{{ end }}`,
		map[string]any{"rows": []any{
			map[string]any{"name": "grafana", "host": "mon01"},
			map[string]any{"name": "legacy"},
		}})
	require.NoError(t, err)
	assert.Equal(t, "| grafana | mon01 |\n| legacy |  |\n", got)
}

func TestRenderPartialParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md.j2"), []byte("{{ if }}"), 0o644))

	_, err := NewEngine(nil).WithPartials(dir).Render("index.md.j2", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse partial")
}

func TestRenderMissingPartialsDir(t *testing.T) {
	got, err := NewEngine(nil).WithPartials(filepath.Join(t.TempDir(), "absent")).Render("t", "ok", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRenderParseError(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.Render("broken", "{{ if }}", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse template")
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.md.j2")
	require.NoError(t, os.WriteFile(path, []byte("# {{ .title }}\n"), 0o644))

	got, err := NewEngine(nil).RenderFile(path, "docs/index.md.j2", map[string]any{"title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "# Home\n", got)

	_, err = NewEngine(nil).RenderFile(filepath.Join(dir, "missing.j2"), "missing.j2", nil)
	require.Error(t, err)
}

// Package render wraps text/template for documentation templates.
//
// A key that does not exist is falsy in if, with, and, or, and prints as an
// empty string, so optional settings can be tested directly:
//
//	{{ range $name, $s := .services }}{{ if $s.enabled }}- {{ $name }}{{ end }}{{ end }}
//
// Reading a field of a missing key is still an error; lookup walks a dotted
// path with a fallback:
//
//	{{ lookup .config "site.name" "Homelab Documentation" }}
//
// Files in the partials directory are available to every template by their
// relative path:
//
//	{{ template "service.md.j2" $s }}
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// TemplateSuffix marks a file as a template; the rendered file drops it.
const TemplateSuffix = ".j2"

// IsTemplate reports whether name carries the template suffix.
func IsTemplate(name string) bool {
	return strings.HasSuffix(name, TemplateSuffix) && len(name) > len(TemplateSuffix)
}

// OutputName strips the template suffix from name.
func OutputName(name string) string {
	return strings.TrimSuffix(name, TemplateSuffix)
}

// printFunc is appended to every printing action so nil prints as "".
const printFunc = "printable"

// Engine renders template files with a shared function map.
type Engine struct {
	funcs       template.FuncMap
	partialsDir string
}

// NewEngine creates an Engine. now supplies the value of the now helper and
// defaults to time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{funcs: funcMap(now)}
}

// WithPartials makes the templates below dir callable from every rendered
// template. The directory is read on each render; a missing one is ignored.
func (e *Engine) WithPartials(dir string) *Engine {
	e.partialsDir = dir
	return e
}

// Render parses and executes body. name identifies the template in errors.
func (e *Engine) Render(name, body string, data map[string]any) (string, error) {
	tpl := template.New(name).Funcs(e.funcs).Option("missingkey=zero")

	partials, err := e.loadPartials()
	if err != nil {
		return "", fmt.Errorf("load partials: %w", err)
	}
	for _, p := range partials {
		if _, err := tpl.New(p.name).Parse(p.body); err != nil {
			return "", fmt.Errorf("parse partial: %w", err)
		}
	}
	if _, err := tpl.Parse(body); err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	for _, t := range tpl.Templates() {
		if t.Tree != nil {
			printEmptyNil(t.Tree, t.Tree.Root)
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

type partial struct {
	name string
	body string
}

// loadPartials reads every template file below the partials directory in
// name order.
func (e *Engine) loadPartials() ([]partial, error) {
	if e.partialsDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(e.partialsDir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var out []partial
	err := filepath.WalkDir(e.partialsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTemplate(d.Name()) {
			return nil
		}
		// #nosec G304 -- partials come from the project's own template tree.
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(e.partialsDir, path)
		if err != nil {
			return err
		}
		out = append(out, partial{name: filepath.ToSlash(rel), body: string(body)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// printEmptyNil pipes the result of each printing action through printFunc.
// Conditions of if, with and range are left alone.
func printEmptyNil(tree *parse.Tree, node parse.Node) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			printEmptyNil(tree, child)
		}
	case *parse.ActionNode:
		if len(n.Pipe.Decl) > 0 {
			return
		}
		ident := parse.NewIdentifier(printFunc).SetTree(tree).SetPos(n.Pipe.Pos)
		n.Pipe.Cmds = append(n.Pipe.Cmds, &parse.CommandNode{
			NodeType: parse.NodeCommand,
			Pos:      n.Pipe.Pos,
			Args:     []parse.Node{ident},
		})
	case *parse.IfNode:
		printEmptyNil(tree, n.List)
		printEmptyNil(tree, n.ElseList)
	case *parse.RangeNode:
		printEmptyNil(tree, n.List)
		printEmptyNil(tree, n.ElseList)
	case *parse.WithNode:
		printEmptyNil(tree, n.List)
		printEmptyNil(tree, n.ElseList)
	}
}

// RenderFile reads path and renders it, naming the template by label.
func (e *Engine) RenderFile(path, label string, data map[string]any) (string, error) {
	// #nosec G304 -- templates come from the project's own template tree.
	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return e.Render(label, string(body), data)
}

func funcMap(now func() time.Time) template.FuncMap {
	title := cases.Title(language.English)
	return template.FuncMap{
		"replace": func(old, replacement string, v any) string {
			return strings.ReplaceAll(toString(v), old, replacement)
		},
		"title": func(v any) string { return title.String(toString(v)) },
		"upper": func(v any) string { return strings.ToUpper(toString(v)) },
		"lower": func(v any) string { return strings.ToLower(toString(v)) },
		"default": func(fallback, v any) any {
			if isEmpty(v) {
				return fallback
			}
			return v
		},
		"lookup": lookup,
		"join": func(sep string, v any) string {
			items, ok := v.([]any)
			if !ok {
				return toString(v)
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = toString(item)
			}
			return strings.Join(parts, sep)
		},
		"indent": func(n int, v any) string {
			pad := strings.Repeat(" ", n)
			return pad + strings.ReplaceAll(toString(v), "\n", "\n"+pad)
		},
		"toYaml": func(v any) (string, error) {
			out, err := yaml.Marshal(v)
			if err != nil {
				return "", err
			}
			return strings.TrimSuffix(string(out), "\n"), nil
		},
		"now": now,
		printFunc: func(v any) any {
			if v == nil {
				return ""
			}
			return v
		},
	}
}

// lookup walks a dot-separated path through nested maps and returns the first
// fallback (or nil) when any step is missing.
func lookup(data any, path string, fallback ...any) any {
	cur := data
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return firstOrNil(fallback)
		}
		next, ok := m[key]
		if !ok || next == nil {
			return firstOrNil(fallback)
		}
		cur = next
	}
	return cur
}

func firstOrNil(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

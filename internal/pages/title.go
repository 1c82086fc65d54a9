// Package pages inspects rendered Markdown pages.
package pages

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Page describes one rendered Markdown file.
type Page struct {
	Path  string // relative to the output directory, slash separated
	Title string
}

// IsMarkdown reports whether name looks like a Markdown page.
func IsMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// Title returns the page title: a front matter title if present, otherwise the
// first level-one heading, otherwise the first heading of any level.
func Title(content []byte) string {
	fm, body := splitFrontMatter(content)
	if fm != nil {
		var meta struct {
			Title string `yaml:"title"`
		}
		if err := yaml.Unmarshal(fm, &meta); err == nil && meta.Title != "" {
			return meta.Title
		}
	}

	root := goldmark.New().Parser().Parse(text.NewReader(body))
	var first, h1 string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		heading, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		title := strings.TrimSpace(inlineText(heading, body))
		if first == "" {
			first = title
		}
		if heading.Level == 1 {
			h1 = title
			return gmast.WalkStop, nil
		}
		return gmast.WalkSkipChildren, nil
	})
	if h1 != "" {
		return h1
	}
	return first
}

// inlineText concatenates the literal text below n.
func inlineText(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}

// splitFrontMatter separates a leading YAML front matter block delimited by
// "---" lines from the Markdown body.
func splitFrontMatter(content []byte) ([]byte, []byte) {
	const delim = "---"
	if !bytes.HasPrefix(content, []byte(delim+"\n")) && !bytes.HasPrefix(content, []byte(delim+"\r\n")) {
		return nil, content
	}
	rest := content[bytes.IndexByte(content, '\n')+1:]
	for offset := 0; offset < len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		line := rest[offset:]
		next := len(rest)
		if end >= 0 {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if strings.TrimRight(string(line), "\r") == delim {
			return rest[:offset], rest[next:]
		}
		offset = next
	}
	return nil, content
}

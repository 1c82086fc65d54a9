package render

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/value"
)

// Reserved context keys. Configuration sections with these names are only
// reachable through .config.
const (
	KeyConfig   = "config"
	KeyDateTime = "ansible_date_time"
	KeyNow      = "now"
)

var reservedKeys = map[string]bool{
	KeyConfig:   true,
	KeyDateTime: true,
	KeyNow:      true,
}

// ContextBuilder assembles the data passed to every template: the full
// configuration under .config, selected top-level sections at the root, and
// the generation timestamp.
type ContextBuilder struct {
	expose []string
	now    func() time.Time
}

// NewContextBuilder creates a builder. A nil expose list exposes every
// non-reserved top-level section at the root; otherwise only the listed ones.
func NewContextBuilder(expose []string, now func() time.Time) *ContextBuilder {
	if now == nil {
		now = time.Now
	}
	return &ContextBuilder{expose: expose, now: now}
}

// Context is the template data for one configuration. The timestamp keys
// are stamped each time Data is called.
type Context struct {
	sections   map[string]any
	now        func() time.Time
	collisions []string
}

// Data returns the map handed to text/template.
func (c Context) Data() map[string]any {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	ts := now()

	data := make(map[string]any, len(c.sections)+2)
	for name, section := range c.sections {
		data[name] = section
	}
	data[KeyDateTime] = map[string]any{"iso8601": ts.Format(time.RFC3339)}
	data[KeyNow] = ts
	return data
}

// Collisions lists sections that were not exposed at the root because their
// names are reserved.
func (c Context) Collisions() []string { return c.collisions }

// Build creates the context for root.
func (b *ContextBuilder) Build(root value.Value) Context {
	full, _ := root.Interface().(map[string]any)
	if full == nil {
		full = map[string]any{}
	}

	ctx := Context{
		sections: map[string]any{KeyConfig: full},
		now:      b.now,
	}

	names := b.expose
	if names == nil {
		names = root.Keys()
	}
	for _, name := range names {
		section, ok := full[name]
		if !ok {
			continue
		}
		if reservedKeys[name] {
			ctx.collisions = append(ctx.collisions, name)
			slog.Warn("Configuration section shadows a reserved template name; use .config instead",
				logfields.Section(name))
			continue
		}
		ctx.sections[name] = section
	}
	return ctx
}

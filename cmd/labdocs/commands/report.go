package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/labdocs/internal/build"
)

// reporter prints the status lines of a run.
type reporter struct {
	w       io.Writer
	verbose bool
}

func newReporter(w io.Writer, verbose bool) *reporter {
	if w == nil {
		w = os.Stdout
	}
	return &reporter{w: w, verbose: verbose}
}

func (r *reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) header(req build.BuildRequest) {
	r.printf("Homelab Documentation Generator\n")
	r.printf("Project root: %s\n", req.ProjectRoot)
	r.printf("Configuration: %s\n", req.ConfigDir)
	r.printf("Environment: %s\n\n", req.Environment)
}

// result prints the stages that completed. Failures are printed by the
// error adapter.
func (r *reporter) result(res *build.BuildResult) {
	if res == nil || res.Metadata.BuildID == "" {
		return
	}
	r.printf("Configuration loaded successfully\n")
	if r.verbose {
		for _, src := range res.Sources {
			r.printf("   %s: %s\n", src.Name, src.Status)
		}
	}
	if res.Status == build.BuildStatusInvalid {
		return
	}
	r.printf("Configuration validation passed\n")
	for _, w := range res.Warnings {
		r.printf("   warning: %s\n", w)
	}

	switch res.Status {
	case build.BuildStatusValidated:
		r.printf("Validation completed successfully\n")
		r.printf("Configuration summary:\n")
		r.printf("   - Networks: %d\n", res.Summary.Networks)
		r.printf("   - Services: %d\n", res.Summary.Services)
		r.printf("   - Enabled services: %d\n", res.Summary.EnabledServices)
	case build.BuildStatusSuccess:
		gen := res.Generated
		if r.verbose {
			for _, p := range gen.Pages {
				title := p.Title
				if title == "" {
					title = "(untitled)"
				}
				r.printf("   %s: %s\n", p.Path, title)
			}
		}
		r.printf("Generated %d pages, copied %d files and %d assets\n",
			len(gen.Rendered), len(gen.Copied), len(gen.Assets))
		r.printf("Site configuration: %s (%s)\n", res.SiteConfig, gen.SiteConfig)
		r.printf("Documentation generation completed!\n")
		r.printf("Output directory: %s\n", res.OutputPath)
	}
}

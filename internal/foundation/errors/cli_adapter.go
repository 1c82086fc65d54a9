package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter writing to stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// WithOutput redirects user-facing messages.
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.out = w
	return a
}

// ExitCodeFor determines the exit code for an error. Every failed run exits 1;
// the category only changes how the failure is presented.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	switch classified.Category() {
	case CategoryConfig:
		fmt.Fprintf(&b, "Failed to load configuration: %s", classified.Message())
	case CategoryValidation:
		b.WriteString("Configuration validation failed:")
		if list, ok := classified.Context().GetStrings("errors"); ok {
			for _, item := range list {
				fmt.Fprintf(&b, "\n   - %s", item)
			}
		}
		return b.String()
	case CategoryBuild, CategoryFileSystem:
		fmt.Fprintf(&b, "Documentation generation failed: %s", classified.Message())
	case CategoryUsage:
		b.WriteString(classified.Message())
	default:
		fmt.Fprintf(&b, "Error: %s", classified.Message())
	}
	if cause := classified.Cause(); cause != nil {
		fmt.Fprintf(&b, ": %v", cause)
	}
	if a.verbose {
		a.writeDetails(&b, classified)
	}
	return b.String()
}

// writeDetails appends the error context and the full cause chain.
func (a *CLIErrorAdapter) writeDetails(b *strings.Builder, err *ClassifiedError) {
	ctx := err.Context()
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "\n   %s: %v", k, ctx[k])
	}
	depth := 0
	for cause := err.Cause(); cause != nil; cause = unwrap(cause) {
		depth++
		fmt.Fprintf(b, "\n   #%d %T: %v", depth, cause, cause)
	}
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// Report logs and prints the error and returns the exit code to use.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// logError logs an error at debug level with its classification; the
// user-facing line is printed separately.
func (a *CLIErrorAdapter) logError(err error) {
	if classified, ok := AsClassified(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(classified.Category())),
			slog.String("severity", string(classified.Severity())),
		}
		if file, ok := classified.Context().GetString("file"); ok {
			attrs = append(attrs, slog.String("file", file))
		}
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, classified.Message(), attrs...)
		return
	}
	a.logger.Debug("Unclassified error", "error", err)
}

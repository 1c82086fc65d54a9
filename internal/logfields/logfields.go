package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyEnvironment = "environment"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyFile        = "file"
	KeyOutput      = "output"
	KeyCount       = "count"
	KeySection     = "section"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Environment(env string) slog.Attr   { return slog.String(KeyEnvironment, env) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func File(f string) slog.Attr            { return slog.String(KeyFile, f) }
func Output(p string) slog.Attr          { return slog.String(KeyOutput, p) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Section(s string) slog.Attr         { return slog.String(KeySection, s) }
func Duration(d time.Duration) slog.Attr { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

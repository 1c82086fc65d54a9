package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/labdocs/internal/build"
	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/generator"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/metrics"
	"git.home.luguber.info/inful/labdocs/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce    time.Duration `help:"Quiet period after the last change before rebuilding" default:"500ms"`
	Interval    time.Duration `help:"Also rebuild periodically (0 disables)" default:"0s"`
	MetricsFile string        `name:"metrics-file" help:"Rewrite a node_exporter textfile after every rebuild" type:"path"`
}

func (w *WatchCmd) Run(globals *Global, cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	req, err := cli.Request(os.LookupEnv)
	if err != nil {
		return err
	}

	out := newReporter(globals.Out, cli.Verbose)
	out.header(req)

	svc := build.NewBuildService()
	var rec *metrics.PrometheusRecorder
	if w.MetricsFile != "" {
		rec = metrics.NewPrometheusRecorder(nil)
		svc.WithRecorder(rec)
	}
	adapter := foundation.NewCLIErrorAdapter(cli.Verbose, slog.Default()).WithOutput(globals.Out)

	rebuild := func(ctx context.Context, reason string) {
		result, err := svc.Run(ctx, req)
		out.result(result)
		writeMetrics(rec, w.MetricsFile)
		if err != nil {
			// A broken configuration must not stop watching.
			adapter.Report(err)
			return
		}
		slog.Info("Rebuild finished", slog.String("reason", reason), logfields.Duration(result.Duration))
	}

	watcher, err := watch.New(watch.Options{
		Paths:    watchPaths(req),
		Ignore:   []string{filepath.Join(req.ProjectRoot, generator.OutputDir)},
		Debounce: w.Debounce,
		Interval: w.Interval,
		Rebuild:  rebuild,
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// watchPaths lists the trees whose changes affect the output.
func watchPaths(req build.BuildRequest) []string {
	templates := req.TemplatesDir
	if templates == "" {
		templates = filepath.Join(req.ProjectRoot, generator.TemplatesDir)
	}
	return []string{req.ConfigDir, templates}
}

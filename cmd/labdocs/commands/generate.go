package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/labdocs/internal/build"
	"git.home.luguber.info/inful/labdocs/internal/metrics"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	ValidateOnly bool   `name:"validate-only" help:"Only validate configuration without generating docs"`
	MetricsFile  string `name:"metrics-file" help:"Write Prometheus metrics for this run to a node_exporter textfile" type:"path"`
}

func (g *GenerateCmd) Run(globals *Global, cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	req, err := cli.Request(os.LookupEnv)
	if err != nil {
		return err
	}
	req.Options.ValidateOnly = g.ValidateOnly

	out := newReporter(globals.Out, cli.Verbose)
	out.header(req)

	svc := build.NewBuildService()
	var rec *metrics.PrometheusRecorder
	if g.MetricsFile != "" {
		rec = metrics.NewPrometheusRecorder(nil)
		svc.WithRecorder(rec)
	}

	result, err := svc.Run(ctx, req)
	out.result(result)
	writeMetrics(rec, g.MetricsFile)
	return err
}

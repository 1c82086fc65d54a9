package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/labdocs/cmd/labdocs/commands"
	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("labdocs"),
		kong.Description("Generate homelab documentation from templates and configuration."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	globals := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	err := kctx.Run(globals, &cli)

	adapter := foundation.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	os.Exit(adapter.Report(err))
}

package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bookbuilder/cmd/bookbuilder/commands"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("bookbuilder"),
		kong.Description("Build a static documentation site from a tree of described source documents."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	global := commands.NewGlobal()
	err := parser.Run(global, cli)
	derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}

package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/walk"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Dir         string `arg:"" optional:"" default:"." help:"Directory inside the book"`
	Force       bool   `short:"f" help:"Ignore the build cache and render every document"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file after the build"`
	Progress    string `help:"Progress output (auto, bar, log, none)" enum:"auto,bar,log,none" default:"auto"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	bk, err := openBook(g, root, b.Dir)
	if err != nil {
		return err
	}

	service := build.NewBuildService().WithLogger(g.Logger)
	var reg *prometheus.Registry
	if b.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		service.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}
	if history := bk.openHistory(g.Logger); history != nil {
		defer func() { _ = history.Close() }()
		service.WithHistory(history)
	}

	res, err := service.Run(context.Background(), build.BuildRequest{
		Root:     bk.root,
		Force:    b.Force,
		Trigger:  "cli",
		Progress: progressFor(b.Progress, g),
	})
	printDiagnostics(g.Stderr, res)
	if root.Verbose {
		printSummary(g.Stdout, res)
	}

	if reg != nil {
		if werr := metrics.WriteTextfile(reg, b.MetricsFile); werr != nil {
			g.Logger.Warn("Cannot write metrics file", slog.String("path", b.MetricsFile), slog.String("error", werr.Error()))
		}
	}
	return err
}

func progressFor(mode string, g *Global) walk.Progress {
	switch mode {
	case "none":
		return walk.NopProgress{}
	case "log":
		return walk.LogProgress{Logger: g.Logger}
	case "bar":
		return walk.BarProgress{W: g.Stderr}
	}
	if isTerminal(g.Stderr) {
		return walk.BarProgress{W: g.Stderr}
	}
	return walk.LogProgress{Logger: g.Logger}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Dir          string        `arg:"" optional:"" default:"." help:"Directory inside the book"`
	RebuildEvery time.Duration `name:"rebuild-every" help:"Also force a full rebuild at this interval (e.g. 30m)"`
	Serve        string        `help:"Serve the site directory on this address (e.g. :8080)"`
	MetricsAddr  string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`
	Debounce     time.Duration `help:"Wait this long for changes to settle" default:"300ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	bk, err := openBook(g, root, w.Dir)
	if err != nil {
		return err
	}

	service := build.NewBuildService().WithLogger(g.Logger)
	opts := watch.Options{
		Root:         bk.root,
		SrcDir:       bk.cfg.SrcPath(bk.root),
		SiteDir:      bk.cfg.SitePath(bk.root),
		CacheDir:     config.CachePath(bk.root),
		Debounce:     w.Debounce,
		RebuildEvery: w.RebuildEvery,
		ServeAddr:    w.Serve,
		OnBuild: func(res *build.BuildResult, _ error) {
			printDiagnostics(g.Stderr, res)
			if root.Verbose {
				printSummary(g.Stdout, res)
			}
		},
	}
	if w.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		service.WithRecorder(metrics.NewPrometheusRecorder(reg))
		opts.MetricsAddr = w.MetricsAddr
		opts.MetricsHandler = metrics.HTTPHandler(reg)
	}
	if history := bk.openHistory(g.Logger); history != nil {
		defer func() { _ = history.Close() }()
		service.WithHistory(history)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch.New(service, opts).WithLogger(g.Logger).Run(ctx)
}

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/cache"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/eventstore"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "BOOKBUILDER_LOG_LEVEL"

// Global is shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobal writes to the process streams.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging and print a timing summary"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the book into its site directory"`
	Clean   CleanCmd   `cmd:"" help:"Remove everything in the site directory except dot files"`
	Clear   ClearCmd   `cmd:"" help:"Remove the build cache so the next build renders everything"`
	Init    InitCmd    `cmd:"" help:"Create a new book from the bundled skeleton"`
	Preset  PresetCmd  `cmd:"" help:"Print a preset book.yaml, index.yaml or article"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild the book whenever its sources change"`
	History HistoryCmd `cmd:"" help:"Show recent builds"`
}

// AfterApply runs after flag parsing; setup logging once. Commands that open a book
// replace the handler with the one book.yaml asks for.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.logLevel(""), config.LogFormatText))
	return nil
}

func (c *CLI) logLevel(configured config.LogLevel) slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		return config.NormalizeLogLevel(env).SlogLevel()
	}
	if configured != "" {
		return configured.SlogLevel()
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// bookDir is a located book: its root and parsed book.yaml.
type bookDir struct {
	root string
	cfg  *config.Book
}

// openBook finds the book containing dir and switches logging to its settings.
func openBook(g *Global, cli *CLI, dir string) (*bookDir, error) {
	root, err := config.FindRoot(dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}
	g.Logger = newLogger(g.Stderr, cli.logLevel(cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(g.Logger)
	return &bookDir{root: root, cfg: cfg}, nil
}

func (b *bookDir) cacheStore(logger *slog.Logger) *cache.Store {
	return cache.NewStore(config.CachePath(b.root), b.cfg.OutputExt).WithLogger(logger)
}

func (b *bookDir) historyPath() string {
	return filepath.Join(config.CachePath(b.root), cache.HistoryFileName)
}

// openHistory opens the build history. A history that cannot be opened is logged
// and skipped; it never blocks a build.
func (b *bookDir) openHistory(logger *slog.Logger) *eventstore.SQLiteStore {
	store, err := eventstore.NewSQLiteStore(b.historyPath())
	if err != nil {
		logger.Warn("Build history disabled", slog.String("error", err.Error()))
		return nil
	}
	return store
}

// printDiagnostics prints every non-empty problem group of a build.
func printDiagnostics(w io.Writer, res *build.BuildResult) {
	if res == nil {
		return
	}
	for _, group := range res.Diagnostics() {
		_, _ = group.WriteTo(w)
	}
}

// printSummary prints the counts and timings of a finished build.
func printSummary(w io.Writer, res *build.BuildResult) {
	if res == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Build %s: %s in %s\n", res.BuildID, res.Status, res.Duration.Round(time.Millisecond))
	if res.Walk != nil {
		_, _ = fmt.Fprintf(w, "  rendered %d, reused %d, failed %d (render %s)\n",
			res.Walk.Rendered, res.Walk.Reused, res.Walk.Failed(), res.Walk.Elapsed.Round(time.Millisecond))
	}
	if res.Site != nil {
		_, _ = fmt.Fprintf(w, "  wrote %d, included %d, copied %d, theme %d, mirrored %d\n",
			res.Site.Written, res.Site.Included, res.Site.Copied, res.Site.ThemeFiles, res.Site.Mirrored)
	}
	if res.FailedStage != "" {
		_, _ = fmt.Fprintf(w, "  failed during %s\n", res.FailedStage)
	}
}

package site

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/cache"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/theme"
	"git.home.luguber.info/inful/bookbuilder/internal/walk"
)

// Report summarizes an assembly. Problems holds everything that went wrong
// without stopping it.
type Report struct {
	Written    int
	Included   int
	Copied     int
	ThemeFiles int
	Mirrored   int
	Problems   *derrors.Diagnostics
}

// Assembler writes the site directory and persists the build cache.
type Assembler struct {
	store  *cache.Store
	theme  fs.FS
	logger *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTheme replaces the embedded theme assets copied when the default theme is on.
func WithTheme(fsys fs.FS) Option {
	return func(a *Assembler) {
		if fsys != nil {
			a.theme = fsys
		}
	}
}

// NewAssembler creates an assembler persisting to store.
func NewAssembler(store *cache.Store, opts ...Option) *Assembler {
	a := &Assembler{store: store, theme: theme.Assets(), logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble rebuilds the site directory from result and saves snapshot, without the
// failed and unmirrored documents, as the new cache index. Only an uncreatable site directory and a
// failed index save are returned as errors.
func (a *Assembler) Assemble(result *walk.Result, project *book.Project, snapshot *cache.Snapshot) (*Report, error) {
	report := &Report{Problems: derrors.NewDiagnostics("while assembling the site")}
	siteDir := project.SiteDir()

	if err := os.MkdirAll(siteDir, 0o750); err != nil {
		return nil, derrors.FileSystemError("cannot create site directory").
			WithCause(err).
			WithContext("path", siteDir).
			Fatal().
			Build()
	}

	for _, err := range Clean(siteDir) {
		report.Problems.Add(err)
	}
	a.copyIncludes(project, report)
	a.writeOutputs(result, project, report)
	a.applyCopies(project, report)
	if project.Config.UseDefaultTheme {
		n, err := copyMissing(a.theme, filepath.Join(siteDir, theme.SiteDir))
		report.ThemeFiles = n
		if err != nil {
			report.Problems.Add(derrors.FileSystemError("cannot copy theme").WithCause(err).Build())
		}
	}
	unmirrored := a.mirror(result, project, report)

	// Documents without a mirrored output must render again next build.
	stale := make([]string, 0, result.Failed()+len(unmirrored))
	for _, path := range result.FailedPaths() {
		if rel, err := project.Rel(path); err == nil {
			stale = append(stale, rel)
		}
	}
	stale = append(stale, unmirrored...)
	if err := a.store.Save(snapshot.Without(stale...)); err != nil {
		return report, err
	}

	a.logger.Debug("Assembled site",
		logfields.Dir(siteDir),
		slog.Int("written", report.Written),
		slog.Int("included", report.Included),
		slog.Int("copied", report.Copied),
		slog.Int("theme_files", report.ThemeFiles),
		slog.Int("mirrored", report.Mirrored))
	return report, nil
}

func (a *Assembler) copyIncludes(project *book.Project, report *Report) {
	for _, inc := range project.Config.Includes {
		if !filepath.IsLocal(inc) {
			report.Problems.Add(derrors.FileSystemError(fmt.Sprintf("include %q must be relative to the source directory", inc)).Build())
			continue
		}
		n, err := copyPath(filepath.Join(project.SrcDir(), inc), filepath.Join(project.SiteDir(), inc))
		report.Included += n
		if err != nil {
			report.Problems.Add(copyError("include", inc, err))
		}
	}
}

func (a *Assembler) writeOutputs(result *walk.Result, project *book.Project, report *Report) {
	for _, out := range result.Outputs {
		rel, err := project.Rel(out.Path)
		if err != nil {
			report.Problems.Add(derrors.FileSystemError("output outside the source directory").WithCause(err).WithContext("path", out.Path).Build())
			continue
		}
		dst := filepath.Join(project.SiteDir(), filepath.FromSlash(cache.OutputRel(rel, project.Config.OutputExt)))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			report.Problems.Add(derrors.FileSystemError("cannot create output directory").WithCause(err).WithContext("path", dst).Build())
			continue
		}
		if err := os.WriteFile(dst, []byte(out.Text), 0o644); err != nil { // #nosec G306 -- published site files
			report.Problems.Add(derrors.FileSystemError("cannot write output").WithCause(err).WithContext("path", dst).Build())
			continue
		}
		report.Written++
	}
}

func (a *Assembler) applyCopies(project *book.Project, report *Report) {
	for _, c := range project.Config.Copies {
		if !filepath.IsLocal(c.From) || !filepath.IsLocal(c.To) {
			report.Problems.Add(derrors.FileSystemError(fmt.Sprintf("copy %q -> %q must stay inside the project", c.From, c.To)).Build())
			continue
		}
		n, err := copyPath(filepath.Join(project.Root, c.From), filepath.Join(project.Root, c.To))
		report.Copied += n
		if err != nil {
			report.Problems.Add(copyError("copy", c.From, err))
		}
	}
}

// mirror copies fresh outputs into the cache and returns the source-relative paths it
// could not write.
func (a *Assembler) mirror(result *walk.Result, project *book.Project, report *Report) []string {
	var unmirrored []string
	for _, out := range result.Outputs {
		if out.Reused {
			continue
		}
		rel, err := project.Rel(out.Path)
		if err != nil {
			continue
		}
		if err := a.store.WriteArtifact(rel, out.Text); err != nil {
			report.Problems.Add(err)
			unmirrored = append(unmirrored, rel)
			continue
		}
		report.Mirrored++
	}
	return unmirrored
}

func copyError(kind, name string, err error) error {
	msg := fmt.Sprintf("cannot copy %s %q", kind, name)
	if errors.Is(err, fs.ErrNotExist) {
		msg = fmt.Sprintf("%s %q does not exist", kind, name)
	}
	return derrors.FileSystemError(msg).WithCause(err).Build()
}

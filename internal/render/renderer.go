package render

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/cache"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/walk"
)

// BookRenderer renders the documents of one project for one build.
type BookRenderer struct {
	project    *book.Project
	diff       *cache.Diff
	converters map[string]Converter
	fallback   Converter
	templates  *TemplateEngine
	sidebar    *Sidebar
	logger     *slog.Logger
}

var _ walk.Renderer = (*BookRenderer)(nil)

// Option configures a BookRenderer.
type Option func(*BookRenderer)

// WithLogger sets the logger for converter warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *BookRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConverter uses c for files with extension ext (".adoc"). An empty ext
// replaces the fallback used for every other extension.
func WithConverter(ext string, c Converter) Option {
	return func(r *BookRenderer) {
		if ext == "" {
			r.fallback = c
			return
		}
		r.converters[strings.ToLower(ext)] = c
	}
}

// WithTheme replaces the embedded theme used for bundled templates.
func WithTheme(fsys fs.FS) Option {
	return func(r *BookRenderer) {
		r.templates = NewTemplateEngine(r.project.SrcDir(), r.project.Config.UseDefaultTheme, fsys)
	}
}

// NewBookRenderer prepares rendering for project. diff decides which documents can be
// skipped. The returned errors concern the sidebar (unreadable documents) and do not
// prevent rendering.
func NewBookRenderer(project *book.Project, diff *cache.Diff, opts ...Option) (*BookRenderer, []error) {
	cfg := project.Config
	md := NewMarkdownConverter()
	r := &BookRenderer{
		project: project,
		diff:    diff,
		converters: map[string]Converter{
			".md":       md,
			".markdown": md,
		},
		templates: NewTemplateEngine(project.SrcDir(), cfg.UseDefaultTheme, nil),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fallback == nil {
		cmd := NewCommandConverter(cfg.Convert, project.SrcDir(), project.SiteDir(), cfg.BaseURL)
		cmd.Logger = r.logger
		r.fallback = cmd
	}

	sidebar, errs := BuildSidebar(project)
	r.sidebar = sidebar
	return r, errs
}

// CanSkip reports whether path is tracked and unchanged since the last build.
func (r *BookRenderer) CanSkip(path string) bool {
	rel, err := r.project.Rel(path)
	if err != nil {
		return false
	}
	return r.diff.Tracked(rel) && !r.diff.NeedsBuild(rel)
}

// Fork copies the converters and sidebar. The project, diff and template engine
// are read-only and shared.
func (r *BookRenderer) Fork() walk.Renderer {
	out := *r
	out.converters = make(map[string]Converter, len(r.converters))
	for ext, c := range r.converters {
		out.converters[ext] = c.Clone()
	}
	out.fallback = r.fallback.Clone()
	out.sidebar = r.sidebar.Clone()
	return &out
}

func (r *BookRenderer) converterFor(path string) Converter {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := r.converters[ext]; ok {
		return c
	}
	return r.fallback
}

// Render converts the document at path and applies its page template, if it names one.
func (r *BookRenderer) Render(ctx context.Context, path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", derrors.RenderError("cannot read source document").WithCause(err).WithContext("path", path).Build()
	}
	meta := ParseMetadata(path, source)
	ref := meta.Template()

	out, err := r.converterFor(path).Convert(ctx, Request{Path: path, Source: source, Embedded: ref != ""})
	if err != nil {
		return "", derrors.RenderError("conversion failed").WithCause(err).WithContext("path", path).Build()
	}
	if ref == "" {
		return out, nil
	}

	url, err := PageURL(r.project, path)
	if err != nil {
		return "", derrors.RenderError("cannot compute page URL").WithCause(err).WithContext("path", path).Build()
	}
	title := meta.Title
	if title == "" {
		title = ExtractTitle(out)
	}
	stylesheet := meta.Attr("stylesheet")
	if dir := meta.Attr("stylesdir"); dir != "" && stylesheet != "" {
		stylesheet = strings.TrimSuffix(dir, "/") + "/" + stylesheet
	}

	cfg := r.project.Config
	data := PageData{
		BaseURL:    cfg.BaseURL,
		BookTitle:  cfg.Title,
		Authors:    cfg.Authors,
		Title:      title,
		Author:     meta.Attr("author"),
		Email:      meta.Attr("email"),
		Revdate:    meta.Attr("revdate"),
		Stylesheet: stylesheet,
		URL:        url,
		Attrs:      meta.Attrs,
		// #nosec G203 -- converter output is the published document itself
		Article: template.HTML(out),
		Sidebar: r.sidebar.ForURL(url),
	}
	return r.templates.Render(ref, data)
}

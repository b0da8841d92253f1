package render

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/theme"
)

// PageData is what page templates receive.
type PageData struct {
	BaseURL    string
	BookTitle  string
	Authors    []string
	Title      string
	Author     string
	Email      string
	Revdate    string
	Stylesheet string
	URL        string
	Attrs      map[string]string
	Article    template.HTML
	Sidebar    []SidebarItem
}

// TemplateEngine renders page templates. References are relative to the source
// directory; when the bundled theme is enabled, references that do not exist there
// resolve against it ("theme/templates/x.html" -> bundled "templates/x.html", anything
// else -> the bundled article template).
//
// Every *.html file in a "partials" directory next to the template is parsed with it.
type TemplateEngine struct {
	srcDir     string
	useDefault bool
	theme      fs.FS
}

// NewTemplateEngine creates an engine. bundled may be nil to use the embedded theme.
func NewTemplateEngine(srcDir string, useDefault bool, bundled fs.FS) *TemplateEngine {
	if bundled == nil {
		bundled = theme.Assets()
	}
	return &TemplateEngine{srcDir: srcDir, useDefault: useDefault, theme: bundled}
}

// Render executes the template ref with data.
func (e *TemplateEngine) Render(ref string, data PageData) (string, error) {
	tpl, name, err := e.load(ref)
	if err != nil {
		return "", derrors.TemplateError("cannot load template").
			WithCause(err).
			WithContext("template", ref).
			Build()
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", derrors.TemplateError("cannot execute template").
			WithCause(err).
			WithContext("template", ref).
			Build()
	}
	return buf.String(), nil
}

func (e *TemplateEngine) load(ref string) (*template.Template, string, error) {
	slashed := filepath.ToSlash(ref)
	if !filepath.IsLocal(ref) {
		return nil, "", errors.New("template path must be relative to the source directory")
	}

	userPath := filepath.Join(e.srcDir, filepath.FromSlash(slashed))
	if info, err := os.Stat(userPath); err == nil && info.Mode().IsRegular() {
		files := []string{userPath}
		partials, err := filepath.Glob(filepath.Join(filepath.Dir(userPath), "partials", "*.html"))
		if err != nil {
			return nil, "", err
		}
		files = append(files, partials...)
		name := filepath.Base(userPath)
		tpl, err := template.New(name).ParseFiles(files...)
		return tpl, name, err
	}

	if !e.useDefault {
		return nil, "", errors.New("template not found")
	}

	bundled := strings.TrimPrefix(slashed, theme.SiteDir+"/")
	if info, err := fs.Stat(e.theme, bundled); err != nil || info.IsDir() || !strings.HasSuffix(bundled, ".html") {
		bundled = theme.ArticleTemplate
	}
	name := path.Base(bundled)
	tpl, err := template.New(name).ParseFS(e.theme, bundled, theme.PartialsDir+"/*.html")
	return tpl, name, err
}

package render

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/cache"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

func rendererFiles() map[string]string {
	return map[string]string{
		"book.yaml":      "title: Guide\nbase_url: /guide\nuse_default_theme: true\n",
		"src/index.yaml": "summary: {name: Home, path: index.adoc}\nitems:\n  - file: {name: Plain, path: plain.adoc}\n  - file: {name: Notes, path: notes.md}\n",
		"src/index.adoc": "= Home\n:template: theme/templates/article.html\n:author: Ada\n:stylesdir: css\n:stylesheet: extra.css\n\nbody\n",
		"src/plain.adoc": "= Plain\n\nno template\n",
		"src/notes.md":   "---\ntemplate: theme/templates/article.html\n---\n# Notes\n\ntext\n",
	}
}

func TestBookRenderer_Render(t *testing.T) {
	p := openProject(t, rendererFiles())
	current, err := cache.Capture(p.SrcDir())
	require.NoError(t, err)

	fake := &fakeConverter{body: "<p>converted</p>"}
	r, errs := NewBookRenderer(p, cache.NewDiff(nil, current), WithConverter(".adoc", fake))
	require.Empty(t, errs)

	t.Run("template", func(t *testing.T) {
		out, err := r.Render(context.Background(), filepath.Join(p.SrcDir(), "index.adoc"))
		require.NoError(t, err)
		assert.Contains(t, out, "<title>Home - Guide</title>")
		assert.Contains(t, out, `<meta name="author" content="Ada">`)
		assert.Contains(t, out, `href="css/extra.css"`)
		assert.Contains(t, out, "<p>converted</p>")
		assert.Contains(t, out, `<li class="active">`)
	})

	t.Run("no template", func(t *testing.T) {
		out, err := r.Render(context.Background(), filepath.Join(p.SrcDir(), "plain.adoc"))
		require.NoError(t, err)
		assert.Equal(t, "<html><body><p>converted</p></body></html>", out)
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := r.Render(context.Background(), filepath.Join(p.SrcDir(), "notes.md"))
		require.NoError(t, err)
		assert.Contains(t, out, "<title>Notes - Guide</title>")
		assert.Contains(t, out, `<h1 id="notes">Notes</h1>`)
	})

	require.Len(t, fake.requests, 2)
	assert.True(t, fake.requests[0].Embedded)
	assert.False(t, fake.requests[1].Embedded)

	t.Run("missing source", func(t *testing.T) {
		_, err := r.Render(context.Background(), filepath.Join(p.SrcDir(), "gone.adoc"))
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryRender))
	})
}

func TestBookRenderer_CanSkip(t *testing.T) {
	p := openProject(t, rendererFiles())
	current, err := cache.Capture(p.SrcDir())
	require.NoError(t, err)

	index := filepath.Join(p.SrcDir(), "index.adoc")
	plain := filepath.Join(p.SrcDir(), "plain.adoc")

	r, _ := NewBookRenderer(p, cache.NewDiff(nil, current))
	assert.False(t, r.CanSkip(index), "no previous snapshot renders everything")

	previous := current.Without("plain.adoc")
	mtime, _ := current.Get("index.adoc")
	previous.Set("notes.md", mtime.Add(-time.Second))

	r, _ = NewBookRenderer(p, cache.NewDiff(previous, current))
	assert.True(t, r.CanSkip(index))
	assert.False(t, r.CanSkip(plain), "new file")
	assert.False(t, r.CanSkip(filepath.Join(p.SrcDir(), "notes.md")), "changed file")
	assert.False(t, r.CanSkip(filepath.Join(p.SrcDir(), "untracked.adoc")))
	assert.False(t, r.CanSkip("/elsewhere/x.adoc"))
}

func TestBookRenderer_Fork(t *testing.T) {
	p := openProject(t, rendererFiles())
	current, err := cache.Capture(p.SrcDir())
	require.NoError(t, err)

	r, _ := NewBookRenderer(p, cache.NewDiff(nil, current))
	fork := r.Fork().(*BookRenderer)

	require.NotSame(t, r.fallback, fork.fallback)
	require.NotSame(t, r.sidebar, fork.sidebar)
	fork.fallback.(*CommandConverter).Args = append(fork.fallback.(*CommandConverter).Args, "-v")
	assert.Empty(t, r.fallback.(*CommandConverter).Args)
}

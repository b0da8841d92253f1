package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownConverter(t *testing.T) {
	c := NewMarkdownConverter()
	src := []byte("---\ntitle: Tables & More\n---\n# Intro\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n")

	t.Run("embedded", func(t *testing.T) {
		out, err := c.Convert(context.Background(), Request{Path: "a.md", Source: src, Embedded: true})
		require.NoError(t, err)
		assert.Contains(t, out, `<h1 id="intro">Intro</h1>`)
		assert.Contains(t, out, "<table>")
		assert.Contains(t, out, "<del>gone</del>")
		assert.NotContains(t, out, "title:")
		assert.NotContains(t, out, "<!DOCTYPE html>")
	})

	t.Run("standalone", func(t *testing.T) {
		out, err := c.Convert(context.Background(), Request{Path: "a.md", Source: src})
		require.NoError(t, err)
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<title>Tables &amp; More</title>")
		assert.Contains(t, out, "<table>")
	})

	t.Run("unclosed frontmatter", func(t *testing.T) {
		_, err := c.Convert(context.Background(), Request{Path: "bad.md", Source: []byte("---\ntitle: x\n")})
		require.Error(t, err)
	})
}

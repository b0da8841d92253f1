package render

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownConverter converts Markdown with goldmark (GitHub flavored, footnotes,
// heading ids). YAML frontmatter is stripped before conversion.
type MarkdownConverter struct {
	md goldmark.Markdown
}

// NewMarkdownConverter creates a converter with the book's goldmark setup.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

func (c *MarkdownConverter) Clone() Converter { return NewMarkdownConverter() }

// Convert renders req.Source. Without Embedded the body is wrapped in a minimal
// standalone page.
func (c *MarkdownConverter) Convert(_ context.Context, req Request) (string, error) {
	_, body, err := splitFrontmatter(req.Source)
	if err != nil {
		return "", fmt.Errorf("%s: %w", req.Path, err)
	}
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("%s: %w", req.Path, err)
	}
	if req.Embedded {
		return buf.String(), nil
	}

	title := ParseMetadata(req.Path, req.Source).Title
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(buf.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// Package render turns one source document into its published HTML.
//
// AsciiDoc and other formats go through an external conversion command (asciidoctor
// by default); Markdown is converted in-process with goldmark. A document that names a
// template (`:template: path` in an AsciiDoc header, `template:` in Markdown frontmatter)
// is converted in embedded mode and wrapped with that html/template page, which receives
// the book sidebar.
package render

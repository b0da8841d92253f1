package render

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Metadata is the document header: its title and attributes.
type Metadata struct {
	Title string
	Attrs map[string]string
}

// Attr returns the named attribute or "".
func (m Metadata) Attr(name string) string { return m.Attrs[name] }

// Template returns the page template the document asks for, if any.
func (m Metadata) Template() string { return m.Attrs["template"] }

var attrLine = regexp.MustCompile(`^:([A-Za-z0-9_][A-Za-z0-9_-]*):(?:\s+(.*))?$`)

// IsMarkdown reports whether path is converted with the built-in Markdown converter.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// ParseMetadata reads the header of a document. It never fails: a document
// without a recognizable header has an empty title and no attributes.
func ParseMetadata(path string, source []byte) Metadata {
	if IsMarkdown(path) {
		return parseMarkdownMetadata(source)
	}
	return parseAsciidocHeader(source)
}

// parseAsciidocHeader reads `= Title` and the `:name: value` lines up to the first blank line.
func parseAsciidocHeader(source []byte) Metadata {
	meta := Metadata{Attrs: map[string]string{}}
	sc := bufio.NewScanner(bytes.NewReader(source))
	first := true
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r ")
		if first && strings.HasPrefix(line, "= ") {
			meta.Title = strings.TrimSpace(line[2:])
			first = false
			continue
		}
		first = false
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "//") {
			continue
		}
		if m := attrLine.FindStringSubmatch(line); m != nil {
			meta.Attrs[m[1]] = strings.TrimSpace(m[2])
		}
	}
	return meta
}

func parseMarkdownMetadata(source []byte) Metadata {
	meta := Metadata{Attrs: map[string]string{}}
	fields, body, err := splitFrontmatter(source)
	if err != nil {
		body = source
	}
	for k, v := range fields {
		if v == nil {
			continue
		}
		meta.Attrs[k] = fmt.Sprint(v)
	}
	meta.Title = meta.Attrs["title"]
	if meta.Title == "" {
		sc := bufio.NewScanner(bytes.NewReader(body))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if strings.HasPrefix(line, "# ") {
				meta.Title = strings.TrimSpace(line[2:])
				break
			}
		}
	}
	return meta
}

// ReadTitle returns the title declared in the document at path.
func ReadTitle(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ParseMetadata(path, data).Title, nil
}

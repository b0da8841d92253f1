package render

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

var errUnclosedFrontmatter = errors.New("frontmatter opened with --- but never closed")

// splitFrontmatter separates `---` delimited YAML frontmatter from the body. Documents
// without frontmatter are returned unchanged with a nil map.
func splitFrontmatter(content []byte) (map[string]any, []byte, error) {
	nl := []byte("\n")
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = []byte("\r\n")
	} else if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, nil
	}

	rest := content[3+len(nl):]
	closing := append(append([]byte{}, nl...), []byte("---")...)

	var raw, body []byte
	if bytes.HasPrefix(rest, []byte("---")) {
		raw, body = nil, rest[3:]
	} else {
		idx := bytes.Index(rest, closing)
		if idx < 0 {
			return nil, nil, errUnclosedFrontmatter
		}
		raw, body = rest[:idx], rest[idx+len(closing):]
	}
	body = bytes.TrimPrefix(body, nl)

	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &fields); err != nil {
			return nil, nil, err
		}
	}
	return fields, body, nil
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Description is the content of a directory's index.yaml.
//
//	summary:
//	  name: Getting started
//	  path: index.adoc
//	items:
//	  - file: {name: Install, path: install.adoc}
//	  - dir: advanced
type Description struct {
	Summary DescriptionFile   `yaml:"summary"`
	Items   []DescriptionItem `yaml:"items"`
}

// DescriptionFile names a document. An empty name means the title is read from the document.
type DescriptionFile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// DescriptionItem is either a file entry or a sub-directory entry.
type DescriptionItem struct {
	File *DescriptionFile `yaml:"file,omitempty"`
	Dir  string           `yaml:"dir,omitempty"`
}

// DeclaredPath returns the path the item names, whichever kind it is.
func (i DescriptionItem) DeclaredPath() string {
	if i.File != nil {
		return i.File.Path
	}
	return i.Dir
}

// ReadDescription parses the index.yaml at path.
func ReadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.StructureError("cannot read directory description").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, derrors.StructureError("cannot parse directory description").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return &desc, nil
}

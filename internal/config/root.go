package config

import (
	"os"
	"path/filepath"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// ErrRootNotFound is returned when no ancestor directory contains book.yaml.
var ErrRootNotFound = derrors.NewError(derrors.CategoryNotFound, "no book.yaml found in this directory or any parent").
	UserAction().
	Build()

// FindRoot walks from dir up to the filesystem root and returns the first
// directory containing book.yaml.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", derrors.FileSystemError("cannot resolve directory").WithCause(err).WithContext("dir", dir).Build()
	}
	for {
		info, err := os.Stat(filepath.Join(abs, FileName))
		if err == nil && info.Mode().IsRegular() {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrRootNotFound.WithContext("dir", dir)
		}
		abs = parent
	}
}

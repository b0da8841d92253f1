package site

import (
	"os"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Clean removes every entry of dir except the ones whose name starts with a dot
// (.git, .nojekyll, ...). A missing dir is not an error.
func Clean(dir string) []error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []error{derrors.FileSystemError("cannot list site directory").WithCause(err).WithContext("path", dir).Build()}
	}
	var errs []error
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(p); err != nil {
			errs = append(errs, derrors.FileSystemError("cannot remove old site entry").WithCause(err).WithContext("path", p).Build())
		}
	}
	return errs
}

package book

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by LoadError. Match them with errors.Is.
var (
	ErrMissingItem        = errors.New("item not found")
	ErrMissingSummary     = errors.New("summary document not found")
	ErrInvalidItem        = errors.New("item must declare exactly one of file or dir")
	ErrNotRelative        = errors.New("path must be relative")
	ErrOutsideSource      = errors.New("path resolves outside the source directory")
	ErrUnexpectedKind     = errors.New("declared kind does not match the target")
	ErrNoDescription      = errors.New("directory has no index.yaml")
	ErrInvalidDescription = errors.New("invalid directory description")
	ErrCycle              = errors.New("directory is already being loaded (cycle)")
)

// LoadError records one bad entry of a directory description. Errors from nested
// descriptions are reported in the same flat list, each naming its own description file.
type LoadError struct {
	// Description is the index.yaml the entry was declared in.
	Description string
	// Declared is the path as written in the description.
	Declared string
	Err      error
}

func (e LoadError) Error() string {
	if e.Declared == "" {
		return fmt.Sprintf("%s: %v", e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Description, e.Declared, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

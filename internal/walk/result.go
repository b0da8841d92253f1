package walk

import (
	"fmt"
	"time"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Output is the rendered text of one source document.
type Output struct {
	Text   string
	Path   string
	Reused bool
}

// BuildError is a failure attributed to one source document.
type BuildError struct {
	Err  error
	Path string
}

func (e BuildError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e BuildError) Unwrap() error { return e.Err }

// Result is the outcome of one walk. Rendered outputs are in completion order,
// followed by the reused ones.
type Result struct {
	Outputs  []Output
	Errors   []BuildError
	Rendered int
	Reused   int
	Elapsed  time.Duration
}

// Failed returns the number of documents that could not be produced.
func (r *Result) Failed() int { return len(r.Errors) }

// FailedPaths returns the source paths of the failed documents.
func (r *Result) FailedPaths() []string {
	paths := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		paths = append(paths, e.Path)
	}
	return paths
}

// Diagnostics groups the failures for reporting.
func (r *Result) Diagnostics() *derrors.Diagnostics {
	d := derrors.NewDiagnostics("while building")
	for _, e := range r.Errors {
		d.Add(e)
	}
	return d
}

func (r *Result) fail(path string, err error) {
	r.Errors = append(r.Errors, BuildError{Err: err, Path: path})
}

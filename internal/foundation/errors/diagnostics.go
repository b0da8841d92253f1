package errors

import (
	"fmt"
	"io"
)

// Diagnostics collects the non-fatal errors of one build step so they can be
// reported together after the step finishes.
type Diagnostics struct {
	Step   string
	Kind   string
	Errors []error
}

// NewDiagnostics creates an empty error group for step, e.g. "while loading the book".
func NewDiagnostics(step string) *Diagnostics {
	return &Diagnostics{Step: step, Kind: "error"}
}

// NewWarnings creates an empty warning group for step.
func NewWarnings(step string) *Diagnostics {
	return &Diagnostics{Step: step, Kind: "warning"}
}

// Add records err; nil errors are ignored.
func (d *Diagnostics) Add(err error) {
	if err == nil {
		return
	}
	d.Errors = append(d.Errors, err)
}

// Len returns the number of recorded errors.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Errors)
}

// Empty reports whether nothing was recorded.
func (d *Diagnostics) Empty() bool {
	return d.Len() == 0
}

// Header returns the count-prefixed heading, e.g. "2 errors while assembling the site:".
func (d *Diagnostics) Header() string {
	kind := d.Kind
	if kind == "" {
		kind = "error"
	}
	if d.Len() != 1 {
		kind += "s"
	}
	return fmt.Sprintf("%d %s %s:", d.Len(), kind, d.Step)
}

// WriteTo prints the group as a heading followed by one "- " line per error.
// An empty group prints nothing.
func (d *Diagnostics) WriteTo(w io.Writer) (int64, error) {
	if d.Empty() {
		return 0, nil
	}
	var total int64
	n, err := fmt.Fprintln(w, d.Header())
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, e := range d.Errors {
		n, err = fmt.Fprintf(w, "- %v\n", e)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

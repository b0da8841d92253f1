package render

import "context"

// Request is one document to convert.
type Request struct {
	// Path is the absolute source path.
	Path   string
	Source []byte
	// Embedded asks for the document body only, without a standalone page around it.
	Embedded bool
}

// Converter turns a source document into HTML.
type Converter interface {
	Convert(ctx context.Context, req Request) (string, error)
	// Clone returns an independent copy safe to use from another goroutine.
	Clone() Converter
}

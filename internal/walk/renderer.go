package walk

import "context"

// Renderer produces the output of one source document.
type Renderer interface {
	// CanSkip reports whether the cached output of path is still valid.
	CanSkip(path string) bool
	// Fork returns a copy that shares no mutable state with the receiver.
	Fork() Renderer
	// Render converts the document at the absolute path.
	Render(ctx context.Context, path string) (string, error)
}

// Tracker knows which source paths exist in the current snapshot.
type Tracker interface {
	Tracked(rel string) bool
}

// ArtifactReader returns the cached output of a source-relative path.
type ArtifactReader interface {
	ReadArtifact(rel string) (string, error)
}

// Package cache decides which source documents must be re-rendered.
//
// A Snapshot maps every file under the source directory (slash-separated, relative)
// to its modification time. The Store persists the snapshot of the last build in
// <root>/.bookbuilder-cache/index.json next to an artifact mirror holding the rendered
// output of every document, so unchanged documents can be reused without rendering.
// Staleness is decided by modification time only; content is never hashed.
package cache
